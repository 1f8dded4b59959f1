package dto

import (
	"encoding/json"
	"time"
)

// Round representa uma rodada liquidada no histórico do jogador
type Round struct {
	RoundID      string          `json:"roundId"`
	Game         string          `json:"game"`
	TotalStaked  int64           `json:"totalStaked"`
	TotalPaid    int64           `json:"totalPaid"`
	Net          int64           `json:"net"`
	BalanceAfter int64           `json:"balanceAfter"`
	Outcome      json.RawMessage `json:"outcome"`
	SettledAt    time.Time       `json:"settledAt"`
}

// RoundPage é a resposta de /v1/players/{id}/rounds
type RoundPage struct {
	UserID string  `json:"userId"`
	Limit  int     `json:"limit"`
	Rounds []Round `json:"rounds"`
}
