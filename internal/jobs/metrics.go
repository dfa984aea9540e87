package jobs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics observes finished sweeps.
type Metrics interface {
	ObserveSweep(report *SweepReport)
}

// NoOpMetrics returns a recorder that drops every observation.
func NoOpMetrics() Metrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) ObserveSweep(*SweepReport) {}

// PrometheusMetrics exports sweep counters and durations.
type PrometheusMetrics struct {
	items    *prometheus.CounterVec
	duration prometheus.Histogram
}

var _ Metrics = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics registers the sweep collectors with reg. A nil reg
// uses the default registerer.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		items: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "publish_sweep_items_total",
				Help: "Scheduled items processed by the sweeper, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "publish_sweep_duration_seconds",
				Help:    "Wall time of a sweep run in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

func (m *PrometheusMetrics) ObserveSweep(report *SweepReport) {
	if m == nil || report == nil {
		return
	}
	for kind, counts := range report.ByKind {
		for outcome, n := range counts {
			if n > 0 {
				m.items.WithLabelValues(string(kind), string(outcome)).Add(float64(n))
			}
		}
	}
	m.duration.Observe(report.Duration().Seconds())
}
