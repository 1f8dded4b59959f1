// Package sim roda rodadas em lote contra um ledger em memória para medir o
// retorno empírico (RTP) da tabela e a distribuição dos pockets.
package sim

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/radieske/keyshop-casino/internal/wagering"
)

// RouletteBet é a aposta repetida em toda rodada de roleta
type RouletteBet struct {
	Kind     wagering.BetKind
	Selector string
}

type Config struct {
	Rounds int
	Seed   uint64
	Stake  int64
	Bet    RouletteBet
	Log    *zap.Logger
}

// Report resume uma simulação
type Report struct {
	Game     wagering.Game `json:"game"`
	Rounds   int           `json:"rounds"`
	Staked   int64         `json:"staked"`
	Paid     int64         `json:"paid"`
	Wins     int           `json:"wins"`
	RTP      float64       `json:"rtp"`
	Expected float64       `json:"expectedRtp"`
	Pockets  []int         `json:"pockets,omitempty"`  // roleta: contagem por número
	LineHits []int         `json:"lineHits,omitempty"` // slots: linhas vencedoras por linha
}

// MaxPocketDeviation devolve o maior desvio relativo de um pocket contra 1/37
func (r Report) MaxPocketDeviation() float64 {
	if len(r.Pockets) == 0 || r.Rounds == 0 {
		return 0
	}
	want := float64(r.Rounds) / wagering.Pockets
	worst := 0.0
	for _, n := range r.Pockets {
		worst = math.Max(worst, math.Abs(float64(n)-want)/want)
	}
	return worst
}

func (c Config) validate() error {
	if c.Rounds <= 0 {
		return fmt.Errorf("rounds must be positive, got %d", c.Rounds)
	}
	if c.Stake <= 0 {
		return fmt.Errorf("stake must be positive, got %d", c.Stake)
	}
	return nil
}

func (c Config) engine(table *wagering.Paytable) *wagering.Engine {
	log := c.Log
	if log == nil {
		log = zap.NewNop()
	}
	var seq int
	// saldo suficiente para perder todas as rodadas
	ledger := wagering.NewMemoryLedger(int64(c.Rounds) * c.Stake)
	return wagering.New(table, ledger,
		wagering.WithSource(wagering.NewSeededSource(c.Seed)),
		wagering.WithLogger(log),
		wagering.WithIDs(func() wagering.RoundHandle {
			seq++
			return wagering.RoundHandle("sim-" + strconv.Itoa(seq))
		}),
	)
}

// Roulette repete a mesma aposta em cfg.Rounds rodadas
func Roulette(ctx context.Context, table *wagering.Paytable, cfg Config) (Report, error) {
	if err := cfg.validate(); err != nil {
		return Report{}, err
	}
	expected, err := ExpectedRouletteRTP(table, cfg.Bet)
	if err != nil {
		return Report{}, err
	}
	e := cfg.engine(table)
	rep := Report{Game: wagering.GameRoulette, Expected: expected, Pockets: make([]int, wagering.Pockets)}

	for i := 0; i < cfg.Rounds; i++ {
		h, err := e.OpenRound(wagering.GameRoulette)
		if err != nil {
			return rep, err
		}
		if _, err := e.PlaceBet(ctx, h, cfg.Bet.Kind, cfg.Bet.Selector, cfg.Stake); err != nil {
			return rep, fmt.Errorf("round %d: %w", i, err)
		}
		res, err := e.SpinRoulette(ctx, h)
		if err != nil {
			return rep, fmt.Errorf("round %d: %w", i, err)
		}
		rep.Rounds++
		rep.Staked += res.TotalStake
		rep.Paid += res.TotalPayout
		rep.Pockets[res.Number]++
		if res.TotalPayout > 0 {
			rep.Wins++
		}
	}
	rep.RTP = float64(rep.Paid) / float64(rep.Staked)
	return rep, nil
}

// Slots gira cfg.Rounds vezes com o stake fixo
func Slots(ctx context.Context, table *wagering.Paytable, cfg Config) (Report, error) {
	if err := cfg.validate(); err != nil {
		return Report{}, err
	}
	e := cfg.engine(table)
	rep := Report{Game: wagering.GameSlots, Expected: ExpectedSlotRTP(table), LineHits: make([]int, wagering.SlotRows)}

	for i := 0; i < cfg.Rounds; i++ {
		h, err := e.OpenRound(wagering.GameSlots)
		if err != nil {
			return rep, err
		}
		res, err := e.SpinSlots(ctx, h, cfg.Stake)
		if err != nil {
			return rep, fmt.Errorf("spin %d: %w", i, err)
		}
		rep.Rounds++
		rep.Staked += res.Stake
		rep.Paid += res.TotalPayout
		for _, line := range res.WinningLines {
			rep.LineHits[line]++
		}
		if res.TotalPayout > 0 {
			rep.Wins++
		}
	}
	rep.RTP = float64(rep.Paid) / float64(rep.Staked)
	return rep, nil
}

// ExpectedRouletteRTP é o retorno teórico da aposta: pockets vencedores/37 × multiplicador
func ExpectedRouletteRTP(table *wagering.Paytable, b RouletteBet) (float64, error) {
	bet, err := table.NewBet(b.Kind, b.Selector, table.Limits.MinStake)
	if err != nil {
		return 0, err
	}
	wins := 0
	for n := 0; n < wagering.Pockets; n++ {
		if bet.Wins(wagering.OutcomeFor(n)) {
			wins++
		}
	}
	m := bet.Multiplier
	return float64(wins) / wagering.Pockets * float64(m.Num) / float64(m.Den), nil
}

// ExpectedSlotRTP soma, para cada linha, P(5 símbolos iguais) × multiplicador
func ExpectedSlotRTP(table *wagering.Paytable) float64 {
	var total int64
	for _, s := range table.Symbols {
		total += s.Weight
	}
	if total == 0 {
		return 0
	}
	perLine := 0.0
	for _, s := range table.Symbols {
		p := float64(s.Weight) / float64(total)
		perLine += math.Pow(p, wagering.SlotColumns) * float64(s.Multiplier)
	}
	return perLine * wagering.SlotRows
}
