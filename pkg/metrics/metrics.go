// Package metrics provides Prometheus instrumentation for the recap CLI.
//
// Counters and histograms are registered on a dedicated registry so tests can
// create isolated instances. The watch command exposes the registry over
// /metrics for long-running use; one-shot commands still record, they just
// never scrape.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the instrument set for backend calls and normalization.
type Metrics struct {
	registry *prometheus.Registry

	// BackendRequests counts backend API calls by endpoint and outcome.
	BackendRequests *prometheus.CounterVec

	// BackendDuration observes backend API call latency by endpoint.
	BackendDuration *prometheus.HistogramVec

	// FallbackSubstitutions counts normalizer fallback substitutions by kind
	// and reason (missing, literal_undefined, parse_error).
	FallbackSubstitutions *prometheus.CounterVec

	// ChatFallbacks counts chat answers served by the local heuristic
	// responder instead of the backend.
	ChatFallbacks prometheus.Counter

	// MeetingsAnalyzed counts completed analysis runs.
	MeetingsAnalyzed prometheus.Counter
}

// New creates a Metrics instance with all collectors registered on a fresh
// registry.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		BackendRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "backend",
				Name:      "requests_total",
				Help:      "Backend API calls by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		BackendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "backend",
				Name:      "request_duration_seconds",
				Help:      "Backend API call latency by endpoint",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		FallbackSubstitutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "normalize",
				Name:      "fallback_substitutions_total",
				Help:      "Canonical records substituted by the fixed fallback, by kind and reason",
			},
			[]string{"kind", "reason"},
		),
		ChatFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "chat",
				Name:      "local_fallback_answers_total",
				Help:      "Chat answers served by the local heuristic responder",
			},
		),
		MeetingsAnalyzed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "meetings_analyzed_total",
				Help:      "Completed analysis runs",
			},
		),
	}

	registry.MustRegister(
		m.BackendRequests,
		m.BackendDuration,
		m.FallbackSubstitutions,
		m.ChatFallbacks,
		m.MeetingsAnalyzed,
	)

	return m
}

// Handler returns an HTTP handler serving this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for test gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Outcome labels for BackendRequests.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Reason labels for FallbackSubstitutions.
const (
	ReasonMissing          = "missing"
	ReasonLiteralUndefined = "literal_undefined"
	ReasonParseError       = "parse_error"
)

// Nop returns a Metrics instance backed by a throwaway registry. Handy for
// callers that do not care about instrumentation.
func Nop() *Metrics {
	return New("recap_nop")
}
