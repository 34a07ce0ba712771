// Package metrics exposes Prometheus counters for schedule generation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "loan_schedule"

// Metrics groups the collectors registered by the server.
type Metrics struct {
	registry   *prometheus.Registry
	schedules  *prometheus.CounterVec
	failures   *prometheus.CounterVec
	latency    prometheus.Histogram
	cacheHits  prometheus.Counter
	cacheMiss  prometheus.Counter
	cacheError prometheus.Counter
}

// New registers the schedule collectors and the Go runtime collectors on a
// private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		schedules: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedules_generated_total",
			Help:      "Schedules generated, by payment frequency.",
		}, []string{"frequency"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_failures_total",
			Help:      "Schedule requests rejected, by reason.",
		}, []string{"reason"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Time spent generating one schedule.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Schedule responses served from the cache.",
		}),
		cacheMiss: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Schedule requests not found in the cache.",
		}),
		cacheError: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_errors_total",
			Help:      "Cache reads or writes that failed.",
		}),
	}

	m.registry.MustRegister(
		m.schedules,
		m.failures,
		m.latency,
		m.cacheHits,
		m.cacheMiss,
		m.cacheError,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveSchedule records one generated schedule.
func (m *Metrics) ObserveSchedule(frequency string, elapsed time.Duration) {
	m.schedules.WithLabelValues(frequency).Inc()
	m.latency.Observe(elapsed.Seconds())
}

// ObserveFailure records a rejected request.
func (m *Metrics) ObserveFailure(reason string) {
	m.failures.WithLabelValues(reason).Inc()
}

// CacheHit records a cache hit.
func (m *Metrics) CacheHit() { m.cacheHits.Inc() }

// CacheMiss records a cache miss.
func (m *Metrics) CacheMiss() { m.cacheMiss.Inc() }

// CacheError records a failed cache operation.
func (m *Metrics) CacheError() { m.cacheError.Inc() }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
