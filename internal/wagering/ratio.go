package wagering

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Ratio é um multiplicador racional positivo (Num/Den).
// O valor creditado numa aposta vencedora é stake*Num/Den, truncado.
type Ratio struct {
	Num int64
	Den int64
}

// Times cria um multiplicador inteiro
func Times(n int64) Ratio { return Ratio{Num: n, Den: 1} }

// ParseRatio aceita "35" ou "3/2"
func ParseRatio(s string) (Ratio, error) {
	s = strings.TrimSpace(s)
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
	if err != nil {
		return Ratio{}, fmt.Errorf("parse ratio %q: %w", s, err)
	}
	d := int64(1)
	if found {
		d, err = strconv.ParseInt(strings.TrimSpace(den), 10, 64)
		if err != nil {
			return Ratio{}, fmt.Errorf("parse ratio %q: %w", s, err)
		}
	}
	r := Ratio{Num: n, Den: d}
	if !r.Valid() {
		return Ratio{}, fmt.Errorf("ratio %q must be positive", s)
	}
	return r, nil
}

func (r Ratio) Valid() bool { return r.Num > 0 && r.Den > 0 }

// Apply retorna stake*r
func (r Ratio) Apply(stake int64) int64 {
	return stake * r.Num / r.Den
}

func (r Ratio) String() string {
	if r.Den == 1 {
		return strconv.FormatInt(r.Num, 10)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

func (r Ratio) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Ratio) UnmarshalText(b []byte) error {
	v, err := ParseRatio(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// UnmarshalYAML aceita tanto escalar numérico (35) quanto string ("3/2")
func (r *Ratio) UnmarshalYAML(node *yaml.Node) error {
	return r.UnmarshalText([]byte(node.Value))
}

func (r Ratio) MarshalYAML() (any, error) { return r.String(), nil }
