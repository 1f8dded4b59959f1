package wagering

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFunds indica saldo insuficiente para a aposta ou para o débito
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidTransition indica chamada fora de ordem no ciclo da rodada
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrRoundInFlight indica que já existe rodada aberta para o mesmo ledger
	ErrRoundInFlight = errors.New("round already in flight")
	// ErrRoundNotFound indica handle desconhecido ou já descartado
	ErrRoundNotFound = errors.New("round not found")
	// ErrWrongGame indica operação de roleta numa rodada de slots (ou o contrário)
	ErrWrongGame = errors.New("operation not supported by this game")
	// ErrNoBets indica giro da roleta sem nenhuma aposta aceita
	ErrNoBets = fmt.Errorf("%w: no bets placed", ErrInvalidTransition)
)

// ValidationError rejeita uma aposta antes de qualquer efeito colateral
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// StateError descreve uma transição ilegal (ex.: PlaceBet durante Spinning)
type StateError struct {
	Op    string
	State State
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s: %v", e.Op, e.State, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }

// LedgerError encapsula falha do ledger durante a liquidação.
// A rodada fica em Spinning até o chamador usar Recover.
type LedgerError struct {
	Round RoundHandle
	Op    string
	Err   error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger %s failed for round %s: %v", e.Op, e.Round, e.Err)
}

func (e *LedgerError) Unwrap() error { return e.Err }
