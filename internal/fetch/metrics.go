package fetch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the Prometheus collectors for the fetch layer.
type Metrics struct {
	Registry           *prometheus.Registry
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    prometheus.Histogram
	CacheHitsTotal     prometheus.Counter
	RevalidationsTotal prometheus.Counter
	RetriesTotal       prometheus.Counter
	FailuresTotal      *prometheus.CounterVec
}

// NewMetrics constructs and registers all collectors on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ceres_fetch_requests_total",
			Help: "Total fetches issued, by transport.",
		},
		[]string{"transport"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ceres_fetch_request_duration_seconds",
			Help:    "Latency of network fetches.",
			Buckets: prometheus.DefBuckets,
		},
	)
	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ceres_fetch_cache_hits_total",
			Help: "Fetches served from the cache without network I/O.",
		},
	)
	revalidations := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ceres_fetch_revalidations_total",
			Help: "Conditional requests answered with 304 Not Modified.",
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ceres_fetch_retries_total",
			Help: "Transport-level retry attempts.",
		},
	)
	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ceres_fetch_failures_total",
			Help: "Fetches abandoned after exhausting retries, by error type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(requests, requestDuration, cacheHits, revalidations, retries, failures)

	return &Metrics{
		Registry:           registry,
		RequestsTotal:      requests,
		RequestDuration:    requestDuration,
		CacheHitsTotal:     cacheHits,
		RevalidationsTotal: revalidations,
		RetriesTotal:       retries,
		FailuresTotal:      failures,
	}
}

// IncRequest increments the fetch counter for a transport ("http" or "browser").
func (m *Metrics) IncRequest(transport string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(transport).Inc()
}

// ObserveDuration records a network fetch duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncCacheHit increments the cache hit counter.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// IncRevalidation increments the 304 revalidation counter.
func (m *Metrics) IncRevalidation() {
	if m == nil {
		return
	}
	m.RevalidationsTotal.Inc()
}

// IncRetry increments the retry counter.
func (m *Metrics) IncRetry() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncFailure increments the failure counter for an error type label.
func (m *Metrics) IncFailure(errorType string) {
	if m == nil {
		return
	}
	m.FailuresTotal.WithLabelValues(errorType).Inc()
}
