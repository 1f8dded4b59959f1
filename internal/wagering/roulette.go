package wagering

// RouletteResult é o que o giro da roleta expõe ao chamador
type RouletteResult struct {
	RoundID     RoundHandle `json:"roundId"`
	Number      int         `json:"number"`
	Color       Color       `json:"color"`
	Bets        []BetResult `json:"bets"`
	TotalStake  int64       `json:"totalStake"`
	TotalPayout int64       `json:"totalPayout"`
	Balance     int64       `json:"balance"`
}

// ResolveRoulette resolve as apostas contra um resultado fixo.
// Função pura: mesmas apostas + mesmo resultado = mesmo pagamento.
func ResolveRoulette(bets []Bet, o RouletteOutcome) RouletteResult {
	res := RouletteResult{
		Number: o.Number,
		Color:  o.Color,
		Bets:   make([]BetResult, 0, len(bets)),
	}
	for _, b := range bets {
		br := b.Resolve(o)
		res.Bets = append(res.Bets, br)
		res.TotalStake += b.Stake
		res.TotalPayout += br.Payout
	}
	return res
}

// rouletteRound acumula as apostas aceitas de uma rodada aberta
type rouletteRound struct {
	bets   []Bet
	staked int64
}

func (r *rouletteRound) add(b Bet) {
	r.bets = append(r.bets, b)
	r.staked += b.Stake
}

// available é o saldo ainda não comprometido nesta rodada
func (r *rouletteRound) available(balance int64) int64 {
	return balance - r.staked
}
