package rewrite

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Capture outcomes.
const (
	OutcomeRewritten = "rewritten"
	OutcomeUnchanged = "unchanged"
	OutcomeGuarded   = "guarded"
	OutcomeDeclined  = "declined"
	OutcomeOverflow  = "overflow"
)

// Metrics records rewrite activity. A nil *Metrics records nothing.
type Metrics struct {
	rewrites *prometheus.CounterVec
	fields   *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics registers the rewrite collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		rewrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gg_seo_rewrites_total",
				Help: "Documents seen by the rewrite middleware by outcome",
			},
			[]string{"outcome"},
		),
		fields: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gg_seo_rewrite_fields_total",
				Help: "Tags substituted by the rewrite rules",
			},
			[]string{"field"},
		),
		duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gg_seo_rewrite_duration_seconds",
				Help:    "Time spent rewriting captured documents",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
	}
}

func (m *Metrics) outcome(outcome string) {
	if m == nil {
		return
	}
	m.rewrites.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observe(started time.Time, fields []string) {
	if m == nil {
		return
	}
	m.duration.Observe(time.Since(started).Seconds())
	for _, f := range fields {
		m.fields.WithLabelValues(f).Inc()
	}
}
