// Package metrics provides the Prometheus collectors for the
// pseudonymization engine.
//
// Counters cover requests, token volume, per-layer detections, and
// call latency, backed by github.com/prometheus/client_golang so the
// engine exposes a standard /metrics scrape target instead of a
// bespoke JSON snapshot.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every Prometheus collector the engine registers.
type Metrics struct {
	RequestsTotal *prometheus.CounterVec

	TokensMintedTotal   *prometheus.CounterVec
	TokensReversedTotal prometheus.Counter

	DetectionsTotal *prometheus.CounterVec

	ConsentRejectionsTotal prometheus.Counter
	BindingFailuresTotal   prometheus.Counter

	PseudonymizeDuration   prometheus.Histogram
	DepseudonymizeDuration prometheus.Histogram

	Registry *prometheus.Registry
}

// New constructs a Metrics instance with every collector registered
// against a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pseudo_requests_total",
			Help: "Total HTTP requests handled by the engine, by route and status class.",
		}, []string{"route", "status"}),
		TokensMintedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pseudo_tokens_minted_total",
			Help: "Total tokens minted, by entity type.",
		}, []string{"entity_type"}),
		TokensReversedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pseudo_tokens_reversed_total",
			Help: "Total tokens successfully resolved during depseudonymization.",
		}),
		DetectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pseudo_detections_total",
			Help: "Total spans that minted a new token, by pipeline layer.",
		}, []string{"layer"}),
		ConsentRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pseudo_consent_rejections_total",
			Help: "Total outbound-extraction requests rejected by the consent gate.",
		}),
		BindingFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pseudo_binding_failures_total",
			Help: "Total pseudonymize calls aborted by a binding failure.",
		}),
		PseudonymizeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pseudo_pseudonymize_duration_seconds",
			Help:    "Latency of pseudonymize calls.",
			Buckets: prometheus.DefBuckets,
		}),
		DepseudonymizeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pseudo_depseudonymize_duration_seconds",
			Help:    "Latency of depseudonymize calls.",
			Buckets: prometheus.DefBuckets,
		}),
		Registry: reg,
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.TokensMintedTotal,
		m.TokensReversedTotal,
		m.DetectionsTotal,
		m.ConsentRejectionsTotal,
		m.BindingFailuresTotal,
		m.PseudonymizeDuration,
		m.DepseudonymizeDuration,
	)
	return m
}

// RecordPseudonymizeLatency observes the duration of one pseudonymize call.
func (m *Metrics) RecordPseudonymizeLatency(d time.Duration) {
	m.PseudonymizeDuration.Observe(d.Seconds())
}

// RecordDepseudonymizeLatency observes the duration of one depseudonymize call.
func (m *Metrics) RecordDepseudonymizeLatency(d time.Duration) {
	m.DepseudonymizeDuration.Observe(d.Seconds())
}
