package wagering

import (
	"strconv"
	"strings"
)

// BetKind é o tipo de aposta da roleta
type BetKind string

const (
	KindStraight BetKind = "straight"
	KindColor    BetKind = "color"
	KindParity   BetKind = "parity"
	KindHighLow  BetKind = "high-low"
	KindDozen    BetKind = "dozen"
	KindColumn   BetKind = "column"
)

// Bet é imutável depois de criada; o multiplicador é fixado na criação
// a partir da tabela publicada e nunca recalculado.
type Bet struct {
	Kind       BetKind `json:"kind"`
	Selector   string  `json:"selector"`
	Stake      int64   `json:"stake"`
	Multiplier Ratio   `json:"multiplier"`
}

// BetResult é o resultado individual de uma aposta após o sorteio
type BetResult struct {
	Bet    Bet   `json:"bet"`
	Won    bool  `json:"won"`
	Payout int64 `json:"payout"`
}

// kindRule define validação do seletor e condição de vitória de um tipo de aposta.
// O valor pago vem sempre da Paytable, nunca daqui.
type kindRule struct {
	normalize func(selector string) (string, bool)
	wins      func(selector string, o RouletteOutcome) bool
}

var kindRules = map[BetKind]kindRule{
	KindStraight: {
		normalize: func(s string) (string, bool) {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 || n >= Pockets {
				return "", false
			}
			return strconv.Itoa(n), true
		},
		wins: func(s string, o RouletteOutcome) bool {
			return s == strconv.Itoa(o.Number)
		},
	},
	KindColor: {
		normalize: oneOf(string(Red), string(Black)),
		wins: func(s string, o RouletteOutcome) bool {
			return Color(s) == o.Color
		},
	},
	KindParity: {
		normalize: oneOf("even", "odd"),
		wins: func(s string, o RouletteOutcome) bool {
			even, ok := o.Even()
			if !ok {
				return false
			}
			return even == (s == "even")
		},
	},
	KindHighLow: {
		normalize: oneOf("low", "high"),
		wins: func(s string, o RouletteOutcome) bool {
			if o.Number == 0 {
				return false
			}
			return (o.Number <= 18) == (s == "low")
		},
	},
	KindDozen: {
		normalize: oneOf("1", "2", "3"),
		wins: func(s string, o RouletteOutcome) bool {
			if o.Number == 0 {
				return false
			}
			return strconv.Itoa((o.Number-1)/12+1) == s
		},
	},
	KindColumn: {
		normalize: oneOf("1", "2", "3"),
		wins: func(s string, o RouletteOutcome) bool {
			if o.Number == 0 {
				return false
			}
			col := o.Number % 3
			if col == 0 {
				col = 3
			}
			return strconv.Itoa(col) == s
		},
	},
}

func oneOf(allowed ...string) func(string) (string, bool) {
	return func(s string) (string, bool) {
		s = strings.ToLower(strings.TrimSpace(s))
		for _, a := range allowed {
			if s == a {
				return s, true
			}
		}
		return "", false
	}
}

// Wins informa se a aposta vence contra o resultado
func (b Bet) Wins(o RouletteOutcome) bool {
	rule, ok := kindRules[b.Kind]
	if !ok {
		return false
	}
	return rule.wins(b.Selector, o)
}

// Resolve calcula o resultado da aposta; perdedora paga 0
func (b Bet) Resolve(o RouletteOutcome) BetResult {
	if !b.Wins(o) {
		return BetResult{Bet: b}
	}
	return BetResult{Bet: b, Won: true, Payout: b.Multiplier.Apply(b.Stake)}
}

// NewBet valida tipo, seletor e limites de mesa e fixa o multiplicador.
// Não consulta saldo: isso é feito pela rodada, que conhece as apostas já feitas.
func (p *Paytable) NewBet(kind BetKind, selector string, stake int64) (Bet, error) {
	rule, ok := kindRules[kind]
	if !ok {
		return Bet{}, invalid("kind", "unknown bet kind %q", kind)
	}
	mult, ok := p.Roulette[kind]
	if !ok {
		return Bet{}, invalid("kind", "bet kind %q not offered", kind)
	}
	sel, ok := rule.normalize(strings.TrimSpace(selector))
	if !ok {
		return Bet{}, invalid("selector", "%q is not valid for %s", selector, kind)
	}
	if err := p.checkStake(stake); err != nil {
		return Bet{}, err
	}
	return Bet{Kind: kind, Selector: sel, Stake: stake, Multiplier: mult}, nil
}
