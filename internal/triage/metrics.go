package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for triage evaluations.
type Metrics struct {
	EvaluationsTotal *prometheus.CounterVec
	ReasonsTotal     *prometheus.CounterVec
	ReferralsTotal   *prometheus.CounterVec
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carecircle_triage_evaluations_total",
			Help: "Triage evaluations by resulting tier and call site.",
		}, []string{"tier", "source"}),
		ReasonsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carecircle_triage_reasons_total",
			Help: "Triage rules fired, by reason text.",
		}, []string{"reason"}),
		ReferralsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carecircle_triage_referrals_total",
			Help: "Evaluations that required an external referral.",
		}, []string{"source"}),
	}

	reg.MustRegister(m.EvaluationsTotal, m.ReasonsTotal, m.ReferralsTotal)
	return m
}

// Observe records one result. A nil receiver is a no-op.
func (m *Metrics) Observe(source string, r Result) {
	if m == nil {
		return
	}
	m.EvaluationsTotal.WithLabelValues(r.Tier.String(), source).Inc()
	for _, reason := range r.Reasons {
		m.ReasonsTotal.WithLabelValues(reason).Inc()
	}
	if r.ReferralRequired {
		m.ReferralsTotal.WithLabelValues(source).Inc()
	}
}
