package wagering

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Game identifica a mesa de uma rodada
type Game string

const (
	GameRoulette Game = "roulette"
	GameSlots    Game = "slots"
)

func (g Game) Valid() bool { return g == GameRoulette || g == GameSlots }

// RoundHandle identifica uma rodada; também é usado como external_ref no ledger
type RoundHandle string

func (h RoundHandle) String() string { return string(h) }

// RoundInfo é uma foto da rodada para consulta
type RoundInfo struct {
	ID     RoundHandle `json:"roundId"`
	Game   Game        `json:"game"`
	State  State       `json:"state"`
	Bets   []Bet       `json:"bets,omitempty"`
	Staked int64       `json:"staked"`
}

type round struct {
	id       RoundHandle
	game     Game
	lc       lifecycle
	roulette rouletteRound
	failure  *LedgerError
}

func (r *round) info() RoundInfo {
	return RoundInfo{
		ID:     r.id,
		Game:   r.game,
		State:  r.lc.current(),
		Bets:   append([]Bet(nil), r.roulette.bets...),
		Staked: r.roulette.staked,
	}
}

// Engine conduz as rodadas de um único jogador contra o seu ledger.
// Só existe uma rodada aberta por vez; chamadas durante Spinning falham na hora.
type Engine struct {
	mu     sync.Mutex
	table  *Paytable
	ledger Ledger
	src    Source
	log    *zap.Logger
	newID  func() RoundHandle

	current  *round
	previous *round
}

type Option func(*Engine)

// WithSource troca a fonte de aleatoriedade (padrão: CryptoSource)
func WithSource(src Source) Option {
	return func(e *Engine) { e.src = src }
}

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithIDs troca o gerador de handles (padrão: uuid v4)
func WithIDs(fn func() RoundHandle) Option {
	return func(e *Engine) { e.newID = fn }
}

func New(table *Paytable, ledger Ledger, opts ...Option) *Engine {
	e := &Engine{
		table:  table,
		ledger: ledger,
		src:    CryptoSource{},
		log:    zap.NewNop(),
		newID:  func() RoundHandle { return RoundHandle(uuid.NewString()) },
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Paytable devolve a tabela publicada da mesa
func (e *Engine) Paytable() *Paytable { return e.table }

// OpenRound abre uma rodada nova. A rodada anterior, se liquidada, volta a Idle.
func (e *Engine) OpenRound(game Game) (RoundHandle, error) {
	if !game.Valid() {
		return "", invalid("game", "unknown game %q", game)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if cur := e.current; cur != nil {
		if cur.lc.current() != StateSettled {
			return "", &StateError{Op: "open round", State: cur.lc.current(), Err: ErrRoundInFlight}
		}
		if err := cur.lc.advance("open round", StateIdle); err != nil {
			return "", err
		}
		e.previous = cur
	}

	r := &round{id: e.newID(), game: game}
	if err := r.lc.advance("open round", StateAcceptingBets); err != nil {
		return "", err
	}
	e.current = r
	e.log.Debug("round opened", zap.String("roundId", r.id.String()), zap.String("game", string(game)))
	return r.id, nil
}

// lookup encontra a rodada atual ou a imediatamente anterior
func (e *Engine) lookup(h RoundHandle) (*round, error) {
	if e.current != nil && e.current.id == h {
		return e.current, nil
	}
	if e.previous != nil && e.previous.id == h {
		return e.previous, nil
	}
	return nil, ErrRoundNotFound
}

func (e *Engine) lookupGame(h RoundHandle, game Game) (*round, error) {
	r, err := e.lookup(h)
	if err != nil {
		return nil, err
	}
	if r.game != game {
		return nil, ErrWrongGame
	}
	return r, nil
}

func (e *Engine) CurrentState(h RoundHandle) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, err := e.lookup(h)
	if err != nil {
		return StateIdle, err
	}
	return r.lc.current(), nil
}

func (e *Engine) Describe(h RoundHandle) (RoundInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, err := e.lookup(h)
	if err != nil {
		return RoundInfo{}, err
	}
	return r.info(), nil
}

// PlaceBet aceita uma aposta de roleta. Nenhum saldo é movido aqui: o débito
// acontece na liquidação, junto com o crédito.
func (e *Engine) PlaceBet(ctx context.Context, h RoundHandle, kind BetKind, selector string, stake int64) (Bet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.lookupGame(h, GameRoulette)
	if err != nil {
		return Bet{}, err
	}
	if err := r.lc.require("place bet", StateAcceptingBets); err != nil {
		return Bet{}, err
	}
	bet, err := e.table.NewBet(kind, selector, stake)
	if err != nil {
		return Bet{}, err
	}
	balance, err := e.ledger.Balance(ctx)
	if err != nil {
		return Bet{}, &LedgerError{Round: r.id, Op: "balance", Err: err}
	}
	if bet.Stake > r.roulette.available(balance) {
		return Bet{}, ErrInsufficientFunds
	}
	r.roulette.add(bet)
	e.log.Debug("bet accepted",
		zap.String("roundId", r.id.String()),
		zap.String("kind", string(bet.Kind)),
		zap.String("selector", bet.Selector),
		zap.Int64("stake", bet.Stake),
	)
	return bet, nil
}

// SpinRoulette sorteia o pocket e liquida todas as apostas num único Settle.
func (e *Engine) SpinRoulette(ctx context.Context, h RoundHandle) (*RouletteResult, error) {
	e.mu.Lock()
	r, err := e.lookupGame(h, GameRoulette)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if err := r.lc.require("spin", StateAcceptingBets); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if len(r.roulette.bets) == 0 {
		e.mu.Unlock()
		return nil, &StateError{Op: "spin", State: StateAcceptingBets, Err: ErrNoBets}
	}
	// o saldo pode ter mudado por fora desde as apostas
	balance, err := e.ledger.Balance(ctx)
	if err != nil {
		e.mu.Unlock()
		return nil, &LedgerError{Round: r.id, Op: "balance", Err: err}
	}
	if r.roulette.staked > balance {
		e.mu.Unlock()
		return nil, ErrInsufficientFunds
	}
	if err := r.lc.advance("spin", StateSpinning); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	bets := append([]Bet(nil), r.roulette.bets...)
	e.mu.Unlock()

	res := ResolveRoulette(bets, drawPocket(e.src))
	res.RoundID = r.id

	after, err := e.ledger.Settle(ctx, res.TotalStake, res.TotalPayout, r.id.String())
	if errors.Is(err, ErrInsufficientFunds) {
		// Settle recusado por inteiro: nada foi aplicado, a rodada volta a aceitar apostas
		e.mu.Lock()
		rerr := r.lc.revert("spin", StateSpinning, StateAcceptingBets)
		e.mu.Unlock()
		if rerr != nil {
			return nil, rerr
		}
		return nil, ErrInsufficientFunds
	}
	if err != nil {
		return nil, e.fail(r, "settle", err)
	}
	res.Balance = after

	if err := e.settle(r); err != nil {
		return nil, err
	}
	e.log.Debug("roulette settled",
		zap.String("roundId", r.id.String()),
		zap.Int("number", res.Number),
		zap.Int64("staked", res.TotalStake),
		zap.Int64("paid", res.TotalPayout),
	)
	return &res, nil
}

// SpinSlots debita o stake, sorteia a grade 3x5 e credita as linhas vencedoras.
func (e *Engine) SpinSlots(ctx context.Context, h RoundHandle, stake int64) (*SlotResult, error) {
	e.mu.Lock()
	r, err := e.lookupGame(h, GameSlots)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if err := r.lc.require("spin", StateAcceptingBets); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if err := e.table.checkStake(stake); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	ref := r.id.String()
	debited, err := e.ledger.Debit(ctx, stake, ref+":stake")
	if err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			e.mu.Unlock()
			return nil, ErrInsufficientFunds
		}
		// débito em estado desconhecido: a rodada fica presa em Spinning
		_ = r.lc.advance("spin", StateSpinning)
		e.mu.Unlock()
		return nil, e.fail(r, "debit", err)
	}
	if err := r.lc.advance("spin", StateSpinning); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.mu.Unlock()

	res := e.table.ResolveSlots(e.table.drawGrid(e.src), stake)
	res.RoundID = r.id

	// sem linha vencedora o débito já é o efeito final
	res.Balance = debited
	if res.TotalPayout > 0 {
		after, err := e.ledger.Credit(ctx, res.TotalPayout, ref+":payout")
		if err != nil {
			return nil, e.fail(r, "credit", err)
		}
		res.Balance = after
	}

	if err := e.settle(r); err != nil {
		return nil, err
	}
	e.log.Debug("slots settled",
		zap.String("roundId", r.id.String()),
		zap.Ints("lines", res.WinningLines),
		zap.Int64("stake", stake),
		zap.Int64("paid", res.TotalPayout),
	)
	return &res, nil
}

// Recover descarta uma rodada presa em Spinning por falha do ledger e devolve
// a falha registrada. O round id serve de referência para conciliação.
func (e *Engine) Recover(h RoundHandle) (*LedgerError, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, err := e.lookup(h)
	if err != nil {
		return nil, err
	}
	if r.lc.current() != StateSpinning || r.failure == nil {
		return nil, &StateError{Op: "recover", State: r.lc.current(), Err: ErrInvalidTransition}
	}
	if e.current == r {
		e.current = nil
	}
	e.log.Warn("stuck round discarded", zap.String("roundId", r.id.String()), zap.Error(r.failure))
	return r.failure, nil
}

func (e *Engine) settle(r *round) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return r.lc.advance("settle", StateSettled)
}

func (e *Engine) fail(r *round, op string, cause error) error {
	lerr := &LedgerError{Round: r.id, Op: op, Err: cause}
	e.mu.Lock()
	r.failure = lerr
	e.mu.Unlock()
	e.log.Error("ledger failure, round left spinning",
		zap.String("roundId", r.id.String()),
		zap.String("op", op),
		zap.Error(cause),
	)
	return lerr
}
