package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics agrupa os contadores do casino-service
type Metrics struct {
	RoundsSettled *prometheus.CounterVec
	Staked        *prometheus.CounterVec
	Paid          *prometheus.CounterVec
	Rejections    *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RoundsSettled: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "casino_rounds_settled_total", Help: "rodadas liquidadas por jogo"}, []string{"game"}),
		Staked:        prometheus.NewCounterVec(prometheus.CounterOpts{Name: "casino_staked_total", Help: "moedas apostadas por jogo"}, []string{"game"}),
		Paid:          prometheus.NewCounterVec(prometheus.CounterOpts{Name: "casino_paid_total", Help: "moedas pagas por jogo"}, []string{"game"}),
		Rejections:    prometheus.NewCounterVec(prometheus.CounterOpts{Name: "casino_rejections_total", Help: "chamadas rejeitadas por motivo"}, []string{"reason"}),
	}
	reg.MustRegister(m.RoundsSettled, m.Staked, m.Paid, m.Rejections)
	return m
}

func (m *Metrics) settled(game string, staked, paid int64) {
	m.RoundsSettled.WithLabelValues(game).Inc()
	m.Staked.WithLabelValues(game).Add(float64(staked))
	m.Paid.WithLabelValues(game).Add(float64(paid))
}
