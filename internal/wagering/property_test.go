package wagering

import (
	"context"
	"errors"
	"testing"

	"pgregory.net/rapid"
)

// countingLedger registra o total debitado e creditado
type countingLedger struct {
	*MemoryLedger
	debited  int64
	credited int64
}

func (l *countingLedger) Debit(ctx context.Context, amount int64, ref string) (int64, error) {
	return l.Settle(ctx, amount, 0, ref)
}

func (l *countingLedger) Credit(ctx context.Context, amount int64, ref string) (int64, error) {
	return l.Settle(ctx, 0, amount, ref)
}

func (l *countingLedger) Settle(ctx context.Context, debit, credit int64, ref string) (int64, error) {
	bal, err := l.MemoryLedger.Settle(ctx, debit, credit, ref)
	if err == nil {
		l.debited += debit
		l.credited += credit
	}
	return bal, err
}

var allKinds = []BetKind{KindStraight, KindColor, KindParity, KindHighLow, KindDozen, KindColumn}

var selectors = map[BetKind][]string{
	KindStraight: {"0", "1", "17", "36", "37"},
	KindColor:    {"red", "black", "green"},
	KindParity:   {"even", "odd"},
	KindHighLow:  {"low", "high"},
	KindDozen:    {"1", "2", "3", "4"},
	KindColumn:   {"1", "2", "3"},
}

func TestBalanceNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		initial := rapid.Int64Range(0, 5000).Draw(t, "initial")
		ledger := &countingLedger{MemoryLedger: NewMemoryLedger(initial)}
		seed := rapid.Uint64().Draw(t, "seed")
		e := New(DefaultPaytable(), ledger, WithSource(NewSeededSource(seed)))

		rounds := rapid.IntRange(1, 20).Draw(t, "rounds")
		for i := 0; i < rounds; i++ {
			game := rapid.SampledFrom([]Game{GameRoulette, GameSlots}).Draw(t, "game")
			h, err := e.OpenRound(game)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			before := ledger.balance

			if game == GameSlots {
				stake := rapid.Int64Range(-10, 3000).Draw(t, "slotStake")
				res, err := e.SpinSlots(ctx, h, stake)
				if err != nil {
					if ledger.balance != before {
						t.Fatalf("rejected spin moved balance %d -> %d", before, ledger.balance)
					}
					// a rodada rejeitada continua aberta: segue com um motor novo
					e = New(DefaultPaytable(), ledger, WithSource(NewSeededSource(seed+uint64(i))))
					continue
				}
				if res.Balance != before-stake+res.TotalPayout {
					t.Fatalf("slot balance %d, want %d", res.Balance, before-stake+res.TotalPayout)
				}
			} else {
				var accepted int64
				var bets []Bet
				n := rapid.IntRange(0, 6).Draw(t, "bets")
				for j := 0; j < n; j++ {
					kind := rapid.SampledFrom(allKinds).Draw(t, "kind")
					sel := rapid.SampledFrom(selectors[kind]).Draw(t, "selector")
					stake := rapid.Int64Range(-5, 2000).Draw(t, "stake")
					b, err := e.PlaceBet(ctx, h, kind, sel, stake)
					if err != nil {
						var verr *ValidationError
						if !errors.As(err, &verr) && !errors.Is(err, ErrInsufficientFunds) {
							t.Fatalf("unexpected rejection: %v", err)
						}
						continue
					}
					accepted += b.Stake
					bets = append(bets, b)
				}
				if accepted > before {
					t.Fatalf("accepted %d against balance %d", accepted, before)
				}
				debited, credited := ledger.debited, ledger.credited
				res, err := e.SpinRoulette(ctx, h)
				if len(bets) == 0 {
					if !errors.Is(err, ErrNoBets) {
						t.Fatalf("spin without bets: %v", err)
					}
					// idem: rodada sem apostas continua aberta
					e = New(DefaultPaytable(), ledger, WithSource(NewSeededSource(seed+uint64(i))))
					continue
				}
				if err != nil {
					t.Fatalf("spin: %v", err)
				}
				if got := ledger.debited - debited; got != accepted {
					t.Fatalf("debited %d, accepted %d", got, accepted)
				}
				var want int64
				for _, b := range bets {
					if b.Wins(OutcomeFor(res.Number)) {
						want += b.Multiplier.Apply(b.Stake)
					}
				}
				if got := ledger.credited - credited; got != want || res.TotalPayout != want {
					t.Fatalf("credited %d (result %d), want %d", got, res.TotalPayout, want)
				}
			}
			if ledger.balance < 0 {
				t.Fatalf("balance went negative: %d", ledger.balance)
			}
		}
	})
}
