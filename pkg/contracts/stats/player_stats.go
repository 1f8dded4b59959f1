package stats

import (
	"math"
	"time"

	"github.com/radieske/keyshop-casino/pkg/contracts/events"
)

// PlayerStats agrega as rodadas liquidadas de um jogador.
// Gravado pelo history-worker e servido pelo history-service.
type PlayerStats struct {
	UserID       string    `json:"userId"`
	TotalWagered int64     `json:"totalWagered"`
	TotalWon     int64     `json:"totalWon"`
	TotalLost    int64     `json:"totalLost"`
	BiggestWin   int64     `json:"biggestWin"`
	GamesPlayed  int64     `json:"gamesPlayed"`
	GamesWon     int64     `json:"gamesWon"`
	WinRate      float64   `json:"winRate"` // percentual, uma casa decimal
	UpdatedAt    time.Time `json:"updatedAt"`
}

// WinRatePercent devolve won/played em percentual com uma casa (43.5)
func WinRatePercent(won, played int64) float64 {
	if played <= 0 {
		return 0
	}
	return math.Round(float64(won)*1000/float64(played)) / 10
}

// CacheKey é a chave Redis do snapshot de stats do jogador
func CacheKey(userID string) string { return "history:stats:" + userID }

// Apply soma uma rodada ao agregado. Só perdas líquidas entram em TotalLost;
// BiggestWin considera o valor bruto pago numa rodada.
func Apply(s PlayerStats, e events.RoundSettled) PlayerStats {
	s.UserID = e.UserID
	s.TotalWagered += e.TotalStaked
	s.TotalWon += e.TotalPaid
	if net := e.Net(); net < 0 {
		s.TotalLost += -net
	}
	if e.TotalPaid > s.BiggestWin {
		s.BiggestWin = e.TotalPaid
	}
	s.GamesPlayed++
	if e.Won() {
		s.GamesWon++
	}
	s.WinRate = WinRatePercent(s.GamesWon, s.GamesPlayed)
	if e.SettledAt.After(s.UpdatedAt) {
		s.UpdatedAt = e.SettledAt
	}
	return s
}
