package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DefaultInitialBalance é o saldo de boas-vindas de uma carteira nova
const DefaultInitialBalance int64 = 10000

// Postgres implementa operações de carteira em banco
type Postgres struct {
	db      *sql.DB
	initial int64
}

func NewPostgres(db *sql.DB, initialBalance int64) *Postgres {
	return &Postgres{db: db, initial: initialBalance}
}

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
	ErrInvalidAmount     = errors.New("invalid amount")
)

// Operações registradas em wallet_operations/wallet_ledger
const (
	OpDeposit = "DEPOSIT"
	OpDebit   = "DEBIT"
	OpCredit  = "CREDIT"
	OpSettle  = "SETTLE"
)

// GetOrCreateWallet retorna o walletId e saldo de um usuário, criando a carteira se não existir
func (p *Postgres) GetOrCreateWallet(ctx context.Context, userID string) (walletID string, balance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	if err = p.ensureWallet(ctx, tx, userID); err != nil {
		return "", 0, err
	}
	if err = tx.QueryRowContext(ctx, `SELECT id, balance FROM wallets WHERE user_id=$1`, userID).Scan(&walletID, &balance); err != nil {
		return "", 0, err
	}
	if err = tx.Commit(); err != nil {
		return "", 0, err
	}
	return walletID, balance, nil
}

// Deposit incrementa o saldo (recarga)
func (p *Postgres) Deposit(ctx context.Context, userID string, amount int64, externalRef string) (string, int64, error) {
	if amount <= 0 {
		return "", 0, ErrInvalidAmount
	}
	return p.apply(ctx, userID, OpDeposit, 0, amount, externalRef)
}

func (p *Postgres) Debit(ctx context.Context, userID string, amount int64, externalRef string) (string, int64, error) {
	if amount <= 0 {
		return "", 0, ErrInvalidAmount
	}
	return p.apply(ctx, userID, OpDebit, amount, 0, externalRef)
}

func (p *Postgres) Credit(ctx context.Context, userID string, amount int64, externalRef string) (string, int64, error) {
	if amount <= 0 {
		return "", 0, ErrInvalidAmount
	}
	return p.apply(ctx, userID, OpCredit, 0, amount, externalRef)
}

// Settle debita e credita na mesma transação: ou aplica os dois ou nenhum
func (p *Postgres) Settle(ctx context.Context, userID string, debit, credit int64, externalRef string) (string, int64, error) {
	if debit < 0 || credit < 0 || debit+credit == 0 {
		return "", 0, ErrInvalidAmount
	}
	return p.apply(ctx, userID, OpSettle, debit, credit, externalRef)
}

// apply é o caminho único de escrita de saldo.
// Lock pessimista na linha da carteira; idempotente por (wallet_id, external_ref).
func (p *Postgres) apply(ctx context.Context, userID, op string, debit, credit int64, externalRef string) (walletID string, balance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	if err = p.ensureWallet(ctx, tx, userID); err != nil {
		return "", 0, err
	}
	if err = tx.QueryRowContext(ctx, `SELECT id, balance FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).Scan(&walletID, &balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, ErrNotFound
		}
		return "", 0, err
	}

	// Idempotência: mesma referência devolve o saldo registrado na primeira vez
	if externalRef != "" {
		var prev int64
		err = tx.QueryRowContext(ctx,
			`SELECT balance_after FROM wallet_operations WHERE wallet_id=$1 AND external_ref=$2`,
			walletID, externalRef).Scan(&prev)
		if err == nil {
			return walletID, prev, nil
		} else if !errors.Is(err, sql.ErrNoRows) {
			return "", 0, err
		}
	}

	if balance < debit {
		return walletID, balance, ErrInsufficientFunds
	}
	balance = balance - debit + credit

	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance = $1, version = version + 1 WHERE id=$2`, balance, walletID); err != nil {
		return "", 0, err
	}

	if externalRef != "" {
		if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_operations(id, wallet_id, external_ref, operation_type, debit, credit, balance_after)
			VALUES($1,$2,$3,$4,$5,$6,$7)`,
			uuid.NewString(), walletID, externalRef, op, debit, credit, balance); err != nil {
			return "", 0, err
		}
	}

	// ledger de auditoria: uma linha por perna
	if debit > 0 {
		if err = insertLedger(ctx, tx, walletID, OpDebit, debit, op, externalRef); err != nil {
			return "", 0, err
		}
	}
	if credit > 0 {
		kind := OpCredit
		if op == OpDeposit {
			kind = OpDeposit
		}
		if err = insertLedger(ctx, tx, walletID, kind, credit, op, externalRef); err != nil {
			return "", 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}
	return walletID, balance, nil
}

// ensureWallet cria a carteira com o saldo inicial se ainda não existir
func (p *Postgres) ensureWallet(ctx context.Context, tx *sql.Tx, userID string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO wallets(id, user_id, balance, version) VALUES($1,$2,$3,1) ON CONFLICT (user_id) DO NOTHING`,
		uuid.NewString(), userID, p.initial)
	if err != nil {
		return fmt.Errorf("ensure wallet: %w", err)
	}
	return nil
}

func insertLedger(ctx context.Context, tx *sql.Tx, walletID, kind string, amount int64, op, externalRef string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount, description) VALUES($1,$2,$3,$4)`,
		walletID, kind, amount, fmt.Sprintf("%s:%s", op, externalRef))
	return err
}
