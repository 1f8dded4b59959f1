package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/radieske/keyshop-casino/internal/history-service/dto"
	"github.com/radieske/keyshop-casino/pkg/contracts/stats"
)

type ReadRepo struct {
	DB *sql.DB
}

// ListRounds devolve as rodadas mais recentes primeiro
func (r *ReadRepo) ListRounds(ctx context.Context, userID string, limit int) ([]dto.Round, error) {
	const q = `
		SELECT round_id, game, total_staked, total_paid, balance_after, outcome, settled_at
		FROM round_history
		WHERE user_id = $1
		ORDER BY settled_at DESC, round_id
		LIMIT $2;
	`
	rows, err := r.DB.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]dto.Round, 0, limit)
	for rows.Next() {
		var (
			rd      dto.Round
			outcome []byte
		)
		if err := rows.Scan(&rd.RoundID, &rd.Game, &rd.TotalStaked, &rd.TotalPaid, &rd.BalanceAfter, &outcome, &rd.SettledAt); err != nil {
			return nil, err
		}
		rd.Net = rd.TotalPaid - rd.TotalStaked
		rd.Outcome = outcome
		out = append(out, rd)
	}
	return out, rows.Err()
}

// GetStats devolve o agregado do jogador; sem rodadas, vem zerado
func (r *ReadRepo) GetStats(ctx context.Context, userID string) (stats.PlayerStats, error) {
	const q = `
		SELECT total_wagered, total_won, total_lost, biggest_win, games_played, games_won, updated_at
		FROM player_stats
		WHERE user_id = $1;
	`
	s := stats.PlayerStats{UserID: userID}
	err := r.DB.QueryRowContext(ctx, q, userID).
		Scan(&s.TotalWagered, &s.TotalWon, &s.TotalLost, &s.BiggestWin, &s.GamesPlayed, &s.GamesWon, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	s.WinRate = stats.WinRatePercent(s.GamesWon, s.GamesPlayed)
	return s, nil
}
