package dto

type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

type RecoverResponse struct {
	RoundID string `json:"roundId"`
	Status  string `json:"status"` // "DISCARDED"
	Cause   string `json:"cause"`
}
