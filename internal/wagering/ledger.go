package wagering

import (
	"context"
	"fmt"
	"sync"
)

// Ledger é o colaborador que guarda o saldo de um jogador.
// O motor assume que cada chamada é atômica e já durável. ref identifica a
// operação (id da rodada) para que o ledger possa ser idempotente.
type Ledger interface {
	Balance(ctx context.Context) (int64, error)
	// Debit retorna ErrInsufficientFunds sem alterar nada quando o saldo não cobre
	Debit(ctx context.Context, amount int64, ref string) (int64, error)
	Credit(ctx context.Context, amount int64, ref string) (int64, error)
	// Settle debita e credita numa única atualização: ou aplica os dois ou nenhum
	Settle(ctx context.Context, debit, credit int64, ref string) (int64, error)
}

// MemoryLedger é um ledger em memória serializado por mutex.
// Usado pelo simulador e nos testes.
type MemoryLedger struct {
	mu      sync.Mutex
	balance int64
	applied map[string]int64
}

func NewMemoryLedger(initial int64) *MemoryLedger {
	if initial < 0 {
		initial = 0
	}
	return &MemoryLedger{balance: initial, applied: make(map[string]int64)}
}

func (l *MemoryLedger) Balance(_ context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance, nil
}

func (l *MemoryLedger) Debit(ctx context.Context, amount int64, ref string) (int64, error) {
	return l.Settle(ctx, amount, 0, ref)
}

func (l *MemoryLedger) Credit(ctx context.Context, amount int64, ref string) (int64, error) {
	return l.Settle(ctx, 0, amount, ref)
}

func (l *MemoryLedger) Settle(_ context.Context, debit, credit int64, ref string) (int64, error) {
	if debit < 0 || credit < 0 {
		return 0, fmt.Errorf("negative amount: debit=%d credit=%d", debit, credit)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	// idempotente por ref
	if ref != "" {
		if bal, ok := l.applied[ref]; ok {
			return bal, nil
		}
	}
	if l.balance < debit {
		return l.balance, ErrInsufficientFunds
	}
	l.balance = l.balance - debit + credit
	if ref != "" {
		l.applied[ref] = l.balance
	}
	return l.balance, nil
}
