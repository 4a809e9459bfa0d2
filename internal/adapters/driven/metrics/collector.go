// Package metrics records pipeline measurements as Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

// Namespace prefixes every metric name.
const Namespace = "regula"

// Ensure Collector implements the interface.
var _ driven.Metrics = (*Collector)(nil)

// Collector owns the metric vectors and the registry they live in.
type Collector struct {
	registry *prometheus.Registry

	asksTotal     *prometheus.CounterVec
	askDuration   prometheus.Histogram
	candidates    prometheus.Histogram
	cacheLookups  *prometheus.CounterVec
	providerCalls *prometheus.CounterVec
	providerTime  *prometheus.HistogramVec
	retries       *prometheus.CounterVec
	indexedChunks *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry, including the
// Go runtime and process collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Collector{
		registry: reg,

		asksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "asks_total",
			Help:      "Questions answered, by outcome.",
		}, []string{"status"}),

		askDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "ask_duration_seconds",
			Help:      "End-to-end question answering latency.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),

		candidates: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "retrieval_candidates",
			Help:      "Candidates kept after the similarity floor.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10},
		}),

		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "embedding_cache_lookups_total",
			Help:      "Embedding cache lookups by level and result.",
		}, []string{"level", "result"}),

		providerCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "provider_requests_total",
			Help:      "Provider HTTP requests by operation and status.",
		}, []string{"operation", "status"}),

		providerTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Provider HTTP request latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"operation"}),

		retries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "provider_retries_total",
			Help:      "Retried provider operations.",
		}, []string{"operation"}),

		indexedChunks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "indexed_chunks_total",
			Help:      "Chunks processed by index builds.",
		}, []string{"result"}),

		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),

		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry returns the registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveAsk implements driven.Metrics.
func (c *Collector) ObserveAsk(status string, d time.Duration) {
	c.asksTotal.WithLabelValues(status).Inc()
	c.askDuration.Observe(d.Seconds())
}

// ObserveCandidates implements driven.Metrics.
func (c *Collector) ObserveCandidates(n int) {
	c.candidates.Observe(float64(n))
}

// ObserveCache implements driven.Metrics.
func (c *Collector) ObserveCache(level string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(level, result).Inc()
}

// ObserveProviderCall implements driven.Metrics.
func (c *Collector) ObserveProviderCall(operation, status string, d time.Duration) {
	c.providerCalls.WithLabelValues(operation, status).Inc()
	c.providerTime.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveRetry implements driven.Metrics.
func (c *Collector) ObserveRetry(operation string) {
	c.retries.WithLabelValues(operation).Inc()
}

// ObserveIndexed implements driven.Metrics.
func (c *Collector) ObserveIndexed(stored, failed int) {
	c.indexedChunks.WithLabelValues("stored").Add(float64(stored))
	c.indexedChunks.WithLabelValues("failed").Add(float64(failed))
}

// ObserveHTTP records one served HTTP request.
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
