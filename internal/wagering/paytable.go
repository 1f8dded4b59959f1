package wagering

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// SlotSymbol é uma entrada do catálogo de símbolos.
// Peso maior = símbolo mais comum = multiplicador menor.
type SlotSymbol struct {
	ID         string `yaml:"id" json:"id"`
	Multiplier int64  `yaml:"multiplier" json:"multiplier"`
	Weight     int64  `yaml:"weight" json:"weight"`
}

// Limits são os limites de stake por aposta (roleta) ou por giro (slots)
type Limits struct {
	MinStake int64 `yaml:"min_stake" json:"minStake"`
	MaxStake int64 `yaml:"max_stake" json:"maxStake"`
}

// Paytable é a configuração estática das mesas.
//
// Convenção de pagamento: o multiplicador é o retorno bruto creditado para uma
// aposta vencedora (stake*multiplicador). O stake é sempre debitado à parte,
// inclusive nas apostas vencedoras. A mesma regra vale para todo tipo de aposta
// e para as linhas do slot.
type Paytable struct {
	Roulette map[BetKind]Ratio `yaml:"roulette" json:"roulette"`
	Symbols  []SlotSymbol      `yaml:"symbols" json:"symbols"`
	Limits   Limits            `yaml:"limits" json:"limits"`
}

// DefaultPaytable reproduz a mesa da loja: número 35, cor e paridade 2,
// e o catálogo de 9 símbolos do caça-níquel.
func DefaultPaytable() *Paytable {
	return &Paytable{
		Roulette: map[BetKind]Ratio{
			KindStraight: Times(35),
			KindColor:    Times(2),
			KindParity:   Times(2),
			KindHighLow:  Times(2),
			KindDozen:    Times(3),
			KindColumn:   Times(3),
		},
		Symbols: []SlotSymbol{
			{ID: "cherry", Multiplier: 2, Weight: 30},
			{ID: "lemon", Multiplier: 3, Weight: 30},
			{ID: "orange", Multiplier: 4, Weight: 15},
			{ID: "watermelon", Multiplier: 5, Weight: 15},
			{ID: "grape", Multiplier: 8, Weight: 6},
			{ID: "bell", Multiplier: 10, Weight: 6},
			{ID: "star", Multiplier: 15, Weight: 3},
			{ID: "seven", Multiplier: 25, Weight: 2},
			{ID: "diamond", Multiplier: 50, Weight: 1},
		},
		Limits: Limits{MinStake: 1, MaxStake: 100000},
	}
}

// LoadPaytable lê a tabela de um arquivo YAML e valida
func LoadPaytable(path string) (*Paytable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read paytable: %w", err)
	}
	var p Paytable
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decode paytable: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate garante que a tabela é utilizável pelo motor
func (p *Paytable) Validate() error {
	var errs []error
	if len(p.Roulette) == 0 {
		errs = append(errs, errors.New("roulette: no bet kinds"))
	}
	for kind, r := range p.Roulette {
		if _, ok := kindRules[kind]; !ok {
			errs = append(errs, fmt.Errorf("roulette: unknown kind %q", kind))
		}
		if !r.Valid() {
			errs = append(errs, fmt.Errorf("roulette: multiplier for %q must be positive", kind))
		}
	}
	if len(p.Symbols) == 0 {
		errs = append(errs, errors.New("symbols: empty catalog"))
	}
	seen := make(map[string]bool, len(p.Symbols))
	for _, s := range p.Symbols {
		if s.ID == "" {
			errs = append(errs, errors.New("symbols: empty id"))
		}
		if seen[s.ID] {
			errs = append(errs, fmt.Errorf("symbols: duplicate id %q", s.ID))
		}
		seen[s.ID] = true
		if s.Multiplier <= 0 || s.Weight <= 0 {
			errs = append(errs, fmt.Errorf("symbols: %q needs positive multiplier and weight", s.ID))
		}
	}
	if p.Limits.MinStake <= 0 {
		errs = append(errs, errors.New("limits: min_stake must be positive"))
	}
	switch {
	case p.Limits.MaxStake <= 0:
		errs = append(errs, errors.New("limits: max_stake must be positive"))
	case p.Limits.MaxStake < p.Limits.MinStake:
		errs = append(errs, errors.New("limits: max_stake below min_stake"))
	default:
		errs = append(errs, p.checkOverflow()...)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid paytable: %w", errors.Join(errs...))
	}
	return nil
}

// checkOverflow rejeita multiplicadores cujo pagamento no stake máximo não cabe em int64.
// No slot as três linhas podem pagar no mesmo giro.
func (p *Paytable) checkOverflow() []error {
	var errs []error
	limit := p.Limits.MaxStake
	for kind, r := range p.Roulette {
		if r.Valid() && r.Num > math.MaxInt64/limit {
			errs = append(errs, fmt.Errorf("roulette: multiplier for %q overflows at max_stake %d", kind, limit))
		}
	}
	for _, s := range p.Symbols {
		if s.Multiplier > 0 && s.Multiplier > math.MaxInt64/(limit*SlotRows) {
			errs = append(errs, fmt.Errorf("symbols: %q multiplier overflows at max_stake %d", s.ID, limit))
		}
	}
	return errs
}

// checkStake aplica stake > 0 e os limites de mesa
func (p *Paytable) checkStake(stake int64) error {
	if stake <= 0 {
		return invalid("stake", "must be positive, got %d", stake)
	}
	if stake < p.Limits.MinStake {
		return invalid("stake", "below table minimum %d", p.Limits.MinStake)
	}
	if stake > p.Limits.MaxStake {
		return invalid("stake", "above table maximum %d", p.Limits.MaxStake)
	}
	return nil
}

// symbolWeightTotal soma os pesos do catálogo (validado > 0)
func (p *Paytable) symbolWeightTotal() int64 {
	var total int64
	for _, s := range p.Symbols {
		total += s.Weight
	}
	return total
}
