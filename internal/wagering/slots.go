package wagering

const (
	SlotRows    = 3
	SlotColumns = 5
)

// SlotGrid guarda os ids dos símbolos sorteados, linha a linha
type SlotGrid [SlotRows][SlotColumns]string

// SlotResult é o que o giro do caça-níquel expõe ao chamador
type SlotResult struct {
	RoundID      RoundHandle `json:"roundId"`
	Grid         SlotGrid    `json:"grid"`
	WinningLines []int       `json:"winningLines"`
	Stake        int64       `json:"stake"`
	TotalPayout  int64       `json:"totalPayout"`
	Balance      int64       `json:"balance"`
}

// drawGrid sorteia as 15 células de forma independente, em ordem de linha
func (p *Paytable) drawGrid(src Source) SlotGrid {
	var g SlotGrid
	for row := 0; row < SlotRows; row++ {
		for col := 0; col < SlotColumns; col++ {
			g[row][col] = p.pickSymbol(src).ID
		}
	}
	return g
}

// ResolveSlots calcula as linhas vencedoras de uma grade fixa.
// Cada linha com 5 símbolos iguais paga stake*multiplicador; linhas somam.
func (p *Paytable) ResolveSlots(g SlotGrid, stake int64) SlotResult {
	res := SlotResult{Grid: g, Stake: stake, WinningLines: []int{}}
	for row := 0; row < SlotRows; row++ {
		id, ok := lineSymbol(g[row])
		if !ok {
			continue
		}
		sym, ok := p.symbol(id)
		if !ok {
			continue
		}
		res.WinningLines = append(res.WinningLines, row)
		res.TotalPayout += stake * sym.Multiplier
	}
	return res
}

func lineSymbol(line [SlotColumns]string) (string, bool) {
	first := line[0]
	for _, id := range line[1:] {
		if id != first {
			return "", false
		}
	}
	return first, first != ""
}

func (p *Paytable) symbol(id string) (SlotSymbol, bool) {
	for _, s := range p.Symbols {
		if s.ID == id {
			return s, true
		}
	}
	return SlotSymbol{}, false
}
