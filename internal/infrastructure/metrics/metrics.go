package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the workflow counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	reg prometheus.Gatherer

	transitions *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	reviews     *prometheus.CounterVec
	submissions *prometheus.CounterVec
	repayments  *prometheus.CounterVec
	sideEffects *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		reg: reg,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loanflow",
			Name:      "application_transitions_total",
			Help:      "Application status transitions applied",
		}, []string{"from", "to"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loanflow",
			Name:      "application_transitions_rejected_total",
			Help:      "Transition attempts refused, by reason",
		}, []string{"reason"}),
		reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loanflow",
			Name:      "reviews_total",
			Help:      "Reviews recorded",
		}, []string{"tier", "status"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loanflow",
			Name:      "application_submissions_total",
			Help:      "Application submissions by outcome",
		}, []string{"outcome"}),
		repayments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loanflow",
			Name:      "loan_repayments_total",
			Help:      "Repayments recorded, by whether they closed the loan",
		}, []string{"closed"}),
		sideEffects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loanflow",
			Name:      "side_effect_failures_total",
			Help:      "Notification/audit emissions that failed",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.transitions, m.rejected, m.reviews, m.submissions, m.repayments, m.sideEffects)
	return m
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) TransitionRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) Review(tier, status string) {
	if m == nil {
		return
	}
	m.reviews.WithLabelValues(tier, status).Inc()
}

func (m *Metrics) Submission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Repayment(closed bool) {
	if m == nil {
		return
	}
	v := "false"
	if closed {
		v = "true"
	}
	m.repayments.WithLabelValues(v).Inc()
}

func (m *Metrics) SideEffectFailed(kind string) {
	if m == nil {
		return
	}
	m.sideEffects.WithLabelValues(kind).Inc()
}

// Handler serves the exposition format for the registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
