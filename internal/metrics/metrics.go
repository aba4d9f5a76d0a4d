// Package metrics defines the Prometheus collectors used by the API and
// exposes the scrape handler.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Provider call outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeClientError   = "client_error"
	OutcomeProviderError = "provider_error"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	ProviderCallsTotal   *prometheus.CounterVec
	ProviderLatency      prometheus.Histogram
	SuggestionCacheHits  prometheus.Counter
	SuggestionCacheMiss  prometheus.Counter
	EventsPublished      *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. Passing a fresh
// prometheus.NewRegistry() keeps tests isolated from the default registry.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		ProviderCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seo_provider_calls_total",
				Help: "SEO suggestion generations by outcome.",
			},
			[]string{"outcome"},
		),
		ProviderLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "seo_provider_latency_seconds",
				Help:    "Latency of calls to the SEO suggestion provider.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 30},
			},
		),
		SuggestionCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "seo_suggestion_cache_hits_total",
				Help: "Suggestion lookups served from cache.",
			},
		),
		SuggestionCacheMiss: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "seo_suggestion_cache_misses_total",
				Help: "Suggestion lookups that had to call the provider.",
			},
		),
		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blog_events_published_total",
				Help: "Domain events handed to the event publisher by type and status.",
			},
			[]string{"type", "status"},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.ProviderCallsTotal,
		m.ProviderLatency,
		m.SuggestionCacheHits,
		m.SuggestionCacheMiss,
		m.EventsPublished,
	)

	return m
}

// RecordProviderCall records one generation attempt.
func (m *Metrics) RecordProviderCall(duration time.Duration, outcome string) {
	if m == nil {
		return
	}
	m.ProviderCallsTotal.WithLabelValues(outcome).Inc()
	m.ProviderLatency.Observe(duration.Seconds())
}

// RecordCacheLookup counts a cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.SuggestionCacheHits.Inc()
		return
	}
	m.SuggestionCacheMiss.Inc()
}

// RecordEvent counts a published (or failed) domain event.
func (m *Metrics) RecordEvent(eventType string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.EventsPublished.WithLabelValues(eventType, status).Inc()
}

// Handler returns the Prometheus scrape HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
