package wagering

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paytable.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultPaytableIsValid(t *testing.T) {
	if err := DefaultPaytable().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadPaytable(t *testing.T) {
	path := writeFile(t, `
roulette:
  straight: 35
  color: "2"
  parity: 3/2
symbols:
  - id: bar
    multiplier: 5
    weight: 4
  - id: seven
    multiplier: 40
    weight: 1
limits:
  min_stake: 10
  max_stake: 500
`)
	p, err := LoadPaytable(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Roulette[KindStraight] != Times(35) {
		t.Errorf("straight = %v", p.Roulette[KindStraight])
	}
	if p.Roulette[KindParity] != (Ratio{Num: 3, Den: 2}) {
		t.Errorf("parity = %v", p.Roulette[KindParity])
	}
	if len(p.Symbols) != 2 || p.Symbols[1].ID != "seven" || p.Symbols[1].Multiplier != 40 {
		t.Errorf("symbols = %+v", p.Symbols)
	}
	if p.Limits.MinStake != 10 || p.Limits.MaxStake != 500 {
		t.Errorf("limits = %+v", p.Limits)
	}
	if _, err := p.NewBet(KindStraight, "1", 5); err == nil {
		t.Error("stake below min_stake accepted")
	}
	if _, err := p.NewBet(KindDozen, "1", 50); err == nil {
		t.Error("kind missing from file accepted")
	}
}

func TestLoadPaytableRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown kind", "roulette: {split: 17}\nsymbols: [{id: a, multiplier: 1, weight: 1}]\nlimits: {min_stake: 1}\n", "unknown kind"},
		{"zero weight", "roulette: {straight: 35}\nsymbols: [{id: a, multiplier: 1, weight: 0}]\nlimits: {min_stake: 1}\n", "positive multiplier and weight"},
		{"duplicate symbol", "roulette: {straight: 35}\nsymbols: [{id: a, multiplier: 1, weight: 1}, {id: a, multiplier: 2, weight: 1}]\nlimits: {min_stake: 1}\n", "duplicate id"},
		{"no symbols", "roulette: {straight: 35}\nlimits: {min_stake: 1}\n", "empty catalog"},
		{"bad limits", "roulette: {straight: 35}\nsymbols: [{id: a, multiplier: 1, weight: 1}]\nlimits: {min_stake: 10, max_stake: 5}\n", "max_stake below"},
		{"bad ratio", "roulette: {straight: 0}\nsymbols: [{id: a, multiplier: 1, weight: 1}]\nlimits: {min_stake: 1}\n", "ratio"},
		{"no max stake", "roulette: {straight: 35}\nsymbols: [{id: a, multiplier: 1, weight: 1}]\nlimits: {min_stake: 1, max_stake: 0}\n", "max_stake must be positive"},
		{"roulette overflow", "roulette: {straight: \"9223372036854775807\"}\nsymbols: [{id: a, multiplier: 1, weight: 1}]\nlimits: {min_stake: 1, max_stake: 2}\n", "multiplier for \"straight\" overflows"},
		{"slot overflow", "roulette: {straight: 35}\nsymbols: [{id: a, multiplier: 1537228672809129302, weight: 1}]\nlimits: {min_stake: 1, max_stake: 2}\n", "\"a\" multiplier overflows"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPaytable(writeFile(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestMaxStakePayoutFitsAtLimit(t *testing.T) {
	p := DefaultPaytable()
	p.Limits.MaxStake = math.MaxInt64 / 50 / SlotRows
	if err := p.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	res := p.ResolveSlots(SlotGrid{
		{"diamond", "diamond", "diamond", "diamond", "diamond"},
		{"diamond", "diamond", "diamond", "diamond", "diamond"},
		{"diamond", "diamond", "diamond", "diamond", "diamond"},
	}, p.Limits.MaxStake)
	if res.TotalPayout <= 0 || res.TotalPayout != p.Limits.MaxStake*50*SlotRows {
		t.Fatalf("payout = %d", res.TotalPayout)
	}

	p.Limits.MaxStake++
	if err := p.Validate(); err == nil || !strings.Contains(err.Error(), "overflows") {
		t.Fatalf("err = %v, want overflow", err)
	}
}

func TestLoadPaytableMissingFile(t *testing.T) {
	if _, err := LoadPaytable(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestResolveSlotsLinesAreAdditive(t *testing.T) {
	p := DefaultPaytable()
	row := func(id string) [SlotColumns]string {
		return [SlotColumns]string{id, id, id, id, id}
	}
	g := SlotGrid{row("diamond"), {"bell", "bell", "bell", "bell", "star"}, row("lemon")}
	res := p.ResolveSlots(g, 10)
	if len(res.WinningLines) != 2 || res.WinningLines[0] != 0 || res.WinningLines[1] != 2 {
		t.Fatalf("lines = %v, want [0 2]", res.WinningLines)
	}
	if res.TotalPayout != 10*50+10*3 {
		t.Fatalf("payout = %d, want 530", res.TotalPayout)
	}

	empty := p.ResolveSlots(SlotGrid{
		{"cherry", "lemon", "cherry", "lemon", "cherry"},
		{"bell", "bell", "bell", "bell", "star"},
		{"seven", "seven", "diamond", "seven", "seven"},
	}, 10)
	if len(empty.WinningLines) != 0 || empty.TotalPayout != 0 {
		t.Fatalf("no line should win: %+v", empty)
	}
}
