package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/keyshop-casino/internal/wagering"
	"github.com/radieske/keyshop-casino/pkg/contracts/events"
)

// Ledgers entrega o ledger de cada jogador (wallet-service em produção)
type Ledgers interface {
	ForUser(userID string) wagering.Ledger
}

// Guard é o lock distribuído de rodada por jogador
type Guard interface {
	Acquire(ctx context.Context, userID, token string) (bool, error)
	Refresh(ctx context.Context, userID, token string) (bool, error)
	Release(ctx context.Context, userID, token string) error
}

type Publisher interface {
	PublishRoundSettled(ctx context.Context, e events.RoundSettled) error
}

// ErrGuardHeld indica rodada aberta do mesmo jogador em outra réplica
var ErrGuardHeld = fmt.Errorf("%w: held by another table", wagering.ErrRoundInFlight)

// Casino mantém um motor por jogador e amarra guard, publicação e métricas
type Casino struct {
	log     *zap.Logger
	table   *wagering.Paytable
	ledgers Ledgers
	guard   Guard
	publ    Publisher
	metrics *Metrics
	src     wagering.Source
	now     func() time.Time

	mu      sync.Mutex
	engines map[string]*wagering.Engine
	tokens  map[string]string // userID -> token do guard
}

type Deps struct {
	Log     *zap.Logger
	Table   *wagering.Paytable
	Ledgers Ledgers
	Guard   Guard
	Pub     Publisher
	Metrics *Metrics
	Source  wagering.Source // nil = CryptoSource
}

func New(d Deps) *Casino {
	c := &Casino{
		log:     d.Log,
		table:   d.Table,
		ledgers: d.Ledgers,
		guard:   d.Guard,
		publ:    d.Pub,
		metrics: d.Metrics,
		src:     d.Source,
		now:     time.Now,
		engines: make(map[string]*wagering.Engine),
		tokens:  make(map[string]string),
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.src == nil {
		c.src = wagering.CryptoSource{}
	}
	return c
}

func (c *Casino) Paytable() *wagering.Paytable { return c.table }

// engine devolve o motor do jogador, criando sob demanda quando create=true
func (c *Casino) engine(userID string, create bool) (*wagering.Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.engines[userID]
	if !ok {
		if !create {
			return nil, wagering.ErrRoundNotFound
		}
		e = wagering.New(c.table, c.ledgers.ForUser(userID),
			wagering.WithSource(c.src),
			wagering.WithLogger(c.log.With(zap.String("userId", userID))),
		)
		c.engines[userID] = e
	}
	return e, nil
}

// OpenRound reserva o guard do jogador e abre a rodada no motor local
func (c *Casino) OpenRound(ctx context.Context, userID string, game wagering.Game) (wagering.RoundInfo, error) {
	e, _ := c.engine(userID, true)

	token := uuid.NewString()
	if c.guard != nil {
		ok, err := c.guard.Acquire(ctx, userID, token)
		if err != nil {
			return wagering.RoundInfo{}, err
		}
		if !ok {
			c.reject(ErrGuardHeld)
			return wagering.RoundInfo{}, ErrGuardHeld
		}
	}

	h, err := e.OpenRound(game)
	if err != nil {
		c.release(ctx, userID, token)
		c.reject(err)
		return wagering.RoundInfo{}, err
	}
	c.mu.Lock()
	c.tokens[userID] = token
	c.mu.Unlock()
	return e.Describe(h)
}

func (c *Casino) Round(userID string, id wagering.RoundHandle) (wagering.RoundInfo, error) {
	e, err := c.engine(userID, false)
	if err != nil {
		return wagering.RoundInfo{}, err
	}
	return e.Describe(id)
}

func (c *Casino) PlaceBet(ctx context.Context, userID string, id wagering.RoundHandle, kind wagering.BetKind, selector string, stake int64) (wagering.Bet, error) {
	e, err := c.engine(userID, false)
	if err != nil {
		return wagering.Bet{}, err
	}
	if err := c.keepAlive(ctx, userID); err != nil {
		return wagering.Bet{}, err
	}
	bet, err := e.PlaceBet(ctx, id, kind, selector, stake)
	if err != nil {
		c.reject(err)
	}
	return bet, err
}

func (c *Casino) SpinRoulette(ctx context.Context, userID string, id wagering.RoundHandle) (*wagering.RouletteResult, error) {
	e, err := c.engine(userID, false)
	if err != nil {
		return nil, err
	}
	if err := c.keepAlive(ctx, userID); err != nil {
		return nil, err
	}
	res, err := e.SpinRoulette(ctx, id)
	if err != nil {
		c.reject(err)
		return nil, err
	}
	c.settled(ctx, userID, rouletteEvent(userID, res, c.now()))
	return res, nil
}

func (c *Casino) SpinSlots(ctx context.Context, userID string, id wagering.RoundHandle, stake int64) (*wagering.SlotResult, error) {
	e, err := c.engine(userID, false)
	if err != nil {
		return nil, err
	}
	if err := c.keepAlive(ctx, userID); err != nil {
		return nil, err
	}
	res, err := e.SpinSlots(ctx, id, stake)
	if err != nil {
		c.reject(err)
		return nil, err
	}
	c.settled(ctx, userID, slotEvent(userID, res, c.now()))
	return res, nil
}

// Recover descarta a rodada presa por falha do ledger e libera o guard
func (c *Casino) Recover(ctx context.Context, userID string, id wagering.RoundHandle) (*wagering.LedgerError, error) {
	e, err := c.engine(userID, false)
	if err != nil {
		return nil, err
	}
	lerr, err := e.Recover(id)
	if err != nil {
		return nil, err
	}
	c.releaseUser(ctx, userID)
	c.log.Warn("round discarded after ledger failure; reconcile by external_ref",
		zap.String("userId", userID),
		zap.String("roundId", id.String()),
		zap.Error(lerr),
	)
	return lerr, nil
}

// settled libera o guard, conta métricas e publica o evento.
// Falha de publicação não desfaz a rodada: o saldo já é definitivo.
func (c *Casino) settled(ctx context.Context, userID string, ev events.RoundSettled) {
	c.releaseUser(ctx, userID)
	if c.metrics != nil {
		c.metrics.settled(ev.Game, ev.TotalStaked, ev.TotalPaid)
	}
	if c.publ == nil {
		return
	}
	if err := c.publ.PublishRoundSettled(ctx, ev); err != nil {
		c.log.Error("publish round_settled", zap.String("roundId", ev.RoundID), zap.Error(err))
	}
}

// keepAlive renova o guard da rodada aberta do jogador a cada chamada
func (c *Casino) keepAlive(ctx context.Context, userID string) error {
	c.mu.Lock()
	token, ok := c.tokens[userID]
	c.mu.Unlock()
	if !ok || c.guard == nil {
		return nil
	}
	held, err := c.guard.Refresh(ctx, userID, token)
	if err != nil {
		return err
	}
	if !held {
		c.reject(ErrGuardHeld)
		return ErrGuardHeld
	}
	return nil
}

func (c *Casino) releaseUser(ctx context.Context, userID string) {
	c.mu.Lock()
	token, ok := c.tokens[userID]
	delete(c.tokens, userID)
	c.mu.Unlock()
	if ok {
		c.release(ctx, userID, token)
	}
}

func (c *Casino) release(ctx context.Context, userID, token string) {
	if c.guard == nil {
		return
	}
	if err := c.guard.Release(ctx, userID, token); err != nil {
		// a chave expira sozinha pelo TTL
		c.log.Warn("round guard release", zap.String("userId", userID), zap.Error(err))
	}
}

func (c *Casino) reject(err error) {
	if c.metrics != nil {
		c.metrics.Rejections.WithLabelValues(Reason(err)).Inc()
	}
}

// Reason classifica um erro do motor para métricas e respostas HTTP
func Reason(err error) string {
	var (
		verr *wagering.ValidationError
		lerr *wagering.LedgerError
	)
	switch {
	case errors.As(err, &lerr):
		return "ledger"
	case errors.As(err, &verr):
		return "validation"
	case errors.Is(err, wagering.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, wagering.ErrRoundNotFound):
		return "not_found"
	case errors.Is(err, wagering.ErrWrongGame):
		return "wrong_game"
	case errors.Is(err, wagering.ErrRoundInFlight):
		return "round_in_flight"
	case errors.Is(err, wagering.ErrInvalidTransition):
		return "invalid_state"
	default:
		return "internal"
	}
}

func rouletteEvent(userID string, res *wagering.RouletteResult, at time.Time) events.RoundSettled {
	number := res.Number
	lines := make([]events.BetLine, 0, len(res.Bets))
	for _, b := range res.Bets {
		lines = append(lines, events.BetLine{
			Kind:     string(b.Bet.Kind),
			Selector: b.Bet.Selector,
			Stake:    b.Bet.Stake,
			Won:      b.Won,
			Payout:   b.Payout,
		})
	}
	return events.RoundSettled{
		RoundID:      res.RoundID.String(),
		UserID:       userID,
		Game:         string(wagering.GameRoulette),
		TotalStaked:  res.TotalStake,
		TotalPaid:    res.TotalPayout,
		BalanceAfter: res.Balance,
		Outcome:      events.Outcome{Number: &number, Color: string(res.Color), Bets: lines},
		SettledAt:    at.UTC(),
	}
}

func slotEvent(userID string, res *wagering.SlotResult, at time.Time) events.RoundSettled {
	grid := make([][]string, 0, wagering.SlotRows)
	for _, row := range res.Grid {
		grid = append(grid, append([]string(nil), row[:]...))
	}
	return events.RoundSettled{
		RoundID:      res.RoundID.String(),
		UserID:       userID,
		Game:         string(wagering.GameSlots),
		TotalStaked:  res.Stake,
		TotalPaid:    res.TotalPayout,
		BalanceAfter: res.Balance,
		Outcome:      events.Outcome{Grid: grid, WinningLines: res.WinningLines},
		SettledAt:    at.UTC(),
	}
}
