package dto

type OpenRoundRequest struct {
	UserID string `json:"userId"`
	Game   string `json:"game"` // "roulette" | "slots"
}

type PlaceBetRequest struct {
	UserID   string `json:"userId"`
	Kind     string `json:"kind"`     // straight | color | parity | high-low | dozen | column
	Selector string `json:"selector"` // "17", "red", "even"...
	Stake    int64  `json:"stake"`
}

type SpinRequest struct {
	UserID string `json:"userId"`
}

type SlotSpinRequest struct {
	UserID string `json:"userId"`
	Stake  int64  `json:"stake"`
}
