package eval

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Attack outcomes used as the "outcome" label.
const (
	OutcomeFooled = "fooled"
	OutcomeRobust = "robust"
	OutcomeError  = "error"
)

// Metrics records per-attack outcomes for a Prometheus registry.
type Metrics struct {
	attacks    *prometheus.CounterVec
	iterations prometheus.Histogram
	l2         prometheus.Histogram
	duration   prometheus.Histogram
}

// NewMetrics creates the evaluation collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "deepfool",
				Subsystem: "eval",
				Name:      "attacks_total",
				Help:      "Attacks run, by outcome",
			},
			[]string{"outcome"},
		),
		iterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "deepfool",
				Subsystem: "eval",
				Name:      "iterations",
				Help:      "Iterations per completed attack",
				Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34, 55},
			},
		),
		l2: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "deepfool",
				Subsystem: "eval",
				Name:      "perturbation_l2",
				Help:      "L2 norm of the perturbation of fooled samples",
				Buckets:   prometheus.ExponentialBuckets(1e-3, 2, 16),
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "deepfool",
				Subsystem: "eval",
				Name:      "attack_duration_seconds",
				Help:      "Wall time per attack",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.attacks, m.iterations, m.l2, m.duration)
	}
	return m
}

// observe records one sample. Safe for concurrent use.
func (m *Metrics) observe(s Sample) {
	if m == nil {
		return
	}
	m.duration.Observe(s.Duration.Seconds())
	switch {
	case s.Err != "":
		m.attacks.WithLabelValues(OutcomeError).Inc()
		return
	case s.Fooled:
		m.attacks.WithLabelValues(OutcomeFooled).Inc()
		m.l2.Observe(s.L2)
	default:
		m.attacks.WithLabelValues(OutcomeRobust).Inc()
	}
	m.iterations.Observe(float64(s.Iterations))
}
