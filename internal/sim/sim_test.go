package sim

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/radieske/keyshop-casino/internal/wagering"
)

func TestRouletteSimulation(t *testing.T) {
	table := wagering.DefaultPaytable()
	cfg := Config{Rounds: 37000, Seed: 7, Stake: 10, Bet: RouletteBet{Kind: wagering.KindColor, Selector: "red"}}

	rep, err := Roulette(context.Background(), table, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Rounds != cfg.Rounds || rep.Staked != int64(cfg.Rounds)*cfg.Stake {
		t.Fatalf("report = %+v", rep)
	}
	if math.Abs(rep.Expected-36.0/37.0) > 1e-9 {
		t.Fatalf("expected rtp = %v", rep.Expected)
	}
	if math.Abs(rep.RTP-rep.Expected) > 0.03 {
		t.Fatalf("rtp = %v, expected ≈ %v", rep.RTP, rep.Expected)
	}
	if dev := rep.MaxPocketDeviation(); dev > 0.2 {
		t.Fatalf("pocket deviation = %v (%v)", dev, rep.Pockets)
	}

	// wins batem com os pockets vermelhos sorteados
	red := 0
	for n, c := range rep.Pockets {
		if wagering.Wheel[n].Color == wagering.Red {
			red += c
		}
	}
	if red != rep.Wins || rep.Paid != int64(red)*20 {
		t.Fatalf("wins = %d, red draws = %d, paid = %d", rep.Wins, red, rep.Paid)
	}
}

func TestSimulationIsReproducible(t *testing.T) {
	table := wagering.DefaultPaytable()
	cfg := Config{Rounds: 500, Seed: 42, Stake: 5, Bet: RouletteBet{Kind: wagering.KindStraight, Selector: "17"}}

	a, err := Roulette(context.Background(), table, cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Roulette(context.Background(), table, cfg)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different reports")
	}

	s1, err := Slots(context.Background(), table, cfg)
	if err != nil {
		t.Fatal(err)
	}
	s2, _ := Slots(context.Background(), table, cfg)
	if !reflect.DeepEqual(s1, s2) {
		t.Fatal("same seed produced different slot reports")
	}
}

func TestSlotSimulation(t *testing.T) {
	table := wagering.DefaultPaytable()
	rep, err := Slots(context.Background(), table, Config{Rounds: 5000, Seed: 3, Stake: 100})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Staked != 500000 || len(rep.LineHits) != wagering.SlotRows {
		t.Fatalf("report = %+v", rep)
	}
	if rep.RTP != float64(rep.Paid)/float64(rep.Staked) {
		t.Fatalf("rtp = %v", rep.RTP)
	}
	hits := 0
	for _, h := range rep.LineHits {
		hits += h
	}
	if hits < rep.Wins {
		t.Fatalf("line hits %d < winning spins %d", hits, rep.Wins)
	}
}

func TestExpectedRTP(t *testing.T) {
	table := wagering.DefaultPaytable()
	tests := []struct {
		bet  RouletteBet
		want float64
	}{
		{RouletteBet{wagering.KindStraight, "0"}, 35.0 / 37.0},
		{RouletteBet{wagering.KindColor, "black"}, 36.0 / 37.0},
		{RouletteBet{wagering.KindDozen, "2"}, 36.0 / 37.0},
		{RouletteBet{wagering.KindColumn, "3"}, 36.0 / 37.0},
	}
	for _, tt := range tests {
		got, err := ExpectedRouletteRTP(table, tt.bet)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%v: rtp = %v, want %v", tt.bet, got, tt.want)
		}
	}

	if got := ExpectedSlotRTP(table); got < 0.0255 || got > 0.027 {
		t.Fatalf("slot rtp = %v", got)
	}
}

func TestInvalidConfig(t *testing.T) {
	table := wagering.DefaultPaytable()
	if _, err := Roulette(context.Background(), table, Config{Rounds: 0, Stake: 1}); err == nil {
		t.Fatal("expected error for zero rounds")
	}
	if _, err := Slots(context.Background(), table, Config{Rounds: 1, Stake: 0}); err == nil {
		t.Fatal("expected error for zero stake")
	}
	_, err := Roulette(context.Background(), table, Config{Rounds: 1, Stake: 1, Bet: RouletteBet{wagering.KindStraight, "99"}})
	var verr *wagering.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want validation error", err)
	}
}
