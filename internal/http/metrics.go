package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const outcomeSuccess = "success"

// Metrics holds the Prometheus collectors exported on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	ConversionsTotal   *prometheus.CounterVec
	ConversionDuration *prometheus.HistogramVec
	MatchConfidence    prometheus.Histogram
	RateLimitedTotal   *prometheus.CounterVec
}

// NewMetrics registers the service collectors plus the Go runtime and process collectors
// on a private registry.
func NewMetrics() *Metrics {
	metrics := &Metrics{
		registry: prometheus.NewRegistry(),
		ConversionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "songbridge_conversions_total",
				Help: "Total number of conversions by surface and outcome",
			},
			[]string{"surface", "outcome"},
		),
		ConversionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "songbridge_conversion_duration_seconds",
				Help:    "Time spent converting a link, upstream calls included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		MatchConfidence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "songbridge_match_confidence",
				Help:    "Similarity between the source track and the selected Qobuz candidate",
				Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
			},
		),
		RateLimitedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "songbridge_rate_limited_total",
				Help: "Total number of conversion requests rejected by the flood gate",
			},
			[]string{"surface"},
		),
	}

	metrics.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.ConversionsTotal,
		metrics.ConversionDuration,
		metrics.MatchConfidence,
		metrics.RateLimitedTotal,
	)

	return metrics
}

// Registry returns the registry served on /metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordConversion counts one conversion. outcome is "success" or an error kind name.
func (m *Metrics) RecordConversion(surface, outcome string, duration time.Duration) {
	m.ConversionsTotal.WithLabelValues(surface, outcome).Inc()
	m.ConversionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *Metrics) RecordConfidence(confidence float64) {
	m.MatchConfidence.Observe(confidence)
}

func (m *Metrics) RecordRateLimited(surface string) {
	m.RateLimitedTotal.WithLabelValues(surface).Inc()
}
