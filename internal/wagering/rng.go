package wagering

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// Source é a fonte de aleatoriedade injetável do motor.
// Intn deve retornar um inteiro uniforme em [0, n).
type Source interface {
	Intn(n int) int
}

// CryptoSource usa crypto/rand (CSPRNG); é a fonte de produção
type CryptoSource struct{}

func (CryptoSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand não falha em plataformas suportadas
		panic("crypto/rand: " + err.Error())
	}
	return int(v.Int64())
}

// SeededSource é determinística a partir de uma seed, para replay e simulação
type SeededSource struct {
	mu sync.Mutex
	r  *mrand.Rand
}

func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{r: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *SeededSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

// SequenceSource devolve valores pré-definidos em ordem (módulo n).
// Usada para reproduzir um resultado conhecido; ao esgotar, recomeça.
type SequenceSource struct {
	mu     sync.Mutex
	values []int
	pos    int
}

func NewSequenceSource(values ...int) *SequenceSource {
	return &SequenceSource{values: values}
}

func (s *SequenceSource) Intn(n int) int {
	if n <= 0 || len(s.values) == 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[s.pos%len(s.values)]
	s.pos++
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// drawPocket sorteia um pocket uniforme entre os 37
func drawPocket(src Source) RouletteOutcome {
	return OutcomeFor(src.Intn(Pockets))
}

// pickSymbol escolhe um símbolo proporcional ao peso (soma cumulativa)
func (p *Paytable) pickSymbol(src Source) SlotSymbol {
	total := p.symbolWeightTotal()
	idx := int64(src.Intn(int(total)))
	var cum int64
	for _, s := range p.Symbols {
		cum += s.Weight
		if idx < cum {
			return s
		}
	}
	return p.Symbols[len(p.Symbols)-1]
}
