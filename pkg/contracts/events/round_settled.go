package events

import "time"

// Evento publicado no tópico "round_settled" pelo casino-service depois que o
// ledger confirma a liquidação de uma rodada.
type RoundSettled struct {
	RoundID      string    `json:"roundId"`
	UserID       string    `json:"userId"`
	Game         string    `json:"game"` // "roulette" | "slots"
	TotalStaked  int64     `json:"totalStaked"`
	TotalPaid    int64     `json:"totalPaid"`
	BalanceAfter int64     `json:"balanceAfter"`
	Outcome      Outcome   `json:"outcome"`
	SettledAt    time.Time `json:"settledAt"`
}

// Outcome resume o sorteio; só os campos do jogo da rodada vêm preenchidos
type Outcome struct {
	// roleta
	Number *int      `json:"number,omitempty"`
	Color  string    `json:"color,omitempty"`
	Bets   []BetLine `json:"bets,omitempty"`

	// slots
	Grid         [][]string `json:"grid,omitempty"`
	WinningLines []int      `json:"winningLines,omitempty"`
}

type BetLine struct {
	Kind     string `json:"kind"`
	Selector string `json:"selector"`
	Stake    int64  `json:"stake"`
	Won      bool   `json:"won"`
	Payout   int64  `json:"payout"`
}

// Net é o resultado líquido do jogador na rodada
func (e RoundSettled) Net() int64 { return e.TotalPaid - e.TotalStaked }

// Won indica se a rodada pagou mais do que custou
func (e RoundSettled) Won() bool { return e.TotalPaid > e.TotalStaked }
