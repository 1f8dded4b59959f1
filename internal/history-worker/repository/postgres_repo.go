package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/radieske/keyshop-casino/pkg/contracts/events"
	"github.com/radieske/keyshop-casino/pkg/contracts/stats"
)

// PostgresRepo persiste o histórico de rodadas e o agregado por jogador
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// Record grava a rodada em round_history e atualiza player_stats na mesma transação.
// Reentrega da mesma rodada (round_id já gravado) não altera o agregado: inserted=false.
func (r *PostgresRepo) Record(ctx context.Context, e events.RoundSettled) (s stats.PlayerStats, inserted bool, err error) {
	outcome, err := json.Marshal(e.Outcome)
	if err != nil {
		return s, false, fmt.Errorf("marshal outcome: %w", err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return s, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO round_history
		  (round_id, user_id, game, total_staked, total_paid, balance_after, outcome, settled_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (round_id) DO NOTHING
	`, e.RoundID, e.UserID, e.Game, e.TotalStaked, e.TotalPaid, e.BalanceAfter, outcome, e.SettledAt)
	if err != nil {
		return s, false, fmt.Errorf("insert round_history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s, false, err
	}

	prev, err := loadStatsForUpdate(ctx, tx, e.UserID)
	if err != nil {
		return s, false, err
	}
	if n == 0 {
		// duplicada: devolve o agregado atual sem reaplicar
		return prev, false, tx.Commit()
	}

	s = stats.Apply(prev, e)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO player_stats
		  (user_id, total_wagered, total_won, total_lost, biggest_win, games_played, games_won, updated_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (user_id) DO UPDATE SET
		  total_wagered = EXCLUDED.total_wagered,
		  total_won     = EXCLUDED.total_won,
		  total_lost    = EXCLUDED.total_lost,
		  biggest_win   = EXCLUDED.biggest_win,
		  games_played  = EXCLUDED.games_played,
		  games_won     = EXCLUDED.games_won,
		  updated_at    = EXCLUDED.updated_at
	`, s.UserID, s.TotalWagered, s.TotalWon, s.TotalLost, s.BiggestWin, s.GamesPlayed, s.GamesWon, s.UpdatedAt)
	if err != nil {
		return s, false, fmt.Errorf("upsert player_stats: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return s, false, err
	}
	return s, true, nil
}

func loadStatsForUpdate(ctx context.Context, tx *sql.Tx, userID string) (stats.PlayerStats, error) {
	s := stats.PlayerStats{UserID: userID}
	err := tx.QueryRowContext(ctx, `
		SELECT total_wagered, total_won, total_lost, biggest_win, games_played, games_won, updated_at
		FROM player_stats WHERE user_id=$1 FOR UPDATE
	`, userID).Scan(&s.TotalWagered, &s.TotalWon, &s.TotalLost, &s.BiggestWin, &s.GamesPlayed, &s.GamesWon, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("select player_stats: %w", err)
	}
	s.WinRate = stats.WinRatePercent(s.GamesWon, s.GamesPlayed)
	return s, nil
}
