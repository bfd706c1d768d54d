// Package metrics provides Prometheus metrics for the leetlens service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector the service exposes.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Weakness cache behavior
	weakCacheHits   prometheus.Counter
	weakCacheMisses *prometheus.CounterVec

	// Recommendation pipeline
	recommendationBatches prometheus.Counter
	recommendationSize    prometheus.Histogram

	// Contest cache and rebuild pipeline
	contestCacheHits      prometheus.Counter
	contestStaleServes    prometheus.Counter
	contestRebuilds       *prometheus.CounterVec
	contestRebuildLatency prometheus.Histogram

	// Remote source health
	remoteCalls        *prometheus.CounterVec
	remoteCallDuration *prometheus.HistogramVec
}

// NewManager creates a metrics manager with its own registry by default.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "leetlens",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initCollectors()
	return m
}

func (m *Manager) initCollectors() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.weakCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "weak_cache_hits_total",
		Help:      "Weak-topic computations served from the per-user cache",
	})

	m.weakCacheMisses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "weak_cache_misses_total",
		Help:      "Weak-topic cache misses by invalidation reason",
	}, []string{"reason"})

	m.recommendationBatches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendation_batches_total",
		Help:      "Recommendation batches generated",
	})

	m.recommendationSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendation_batch_size",
		Help:      "Number of problems per generated batch",
		Buckets:   []float64{0, 1, 3, 6, 12, 25},
	})

	m.contestCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "contest_cache_hits_total",
		Help:      "Contest-history requests served fresh from cache",
	})

	m.contestStaleServes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "contest_stale_serves_total",
		Help:      "Contest-history requests degraded to stale cache after a failed rebuild",
	})

	m.contestRebuilds = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "contest_rebuilds_total",
		Help:      "Contest-history rebuild attempts by outcome",
	}, []string{"outcome"})

	m.contestRebuildLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "contest_rebuild_duration_milliseconds",
		Help:      "Full contest-history rebuild duration in milliseconds",
		Buckets:   []float64{100, 500, 1000, 2500, 5000, 10000, 30000},
	})

	m.remoteCalls = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "remote_calls_total",
		Help:      "Remote source calls by kind and outcome",
	}, []string{"kind", "outcome"})

	m.remoteCallDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "remote_call_duration_milliseconds",
		Help:      "Remote source call duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"kind"})
}

// Registry exposes the backing registry for the /metrics handler.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Global manager instance.
var globalManager = NewManager() //nolint:gochecknoglobals // singleton metrics manager

// Default returns the global manager.
func Default() *Manager { return globalManager }

// Package-level record helpers, mirroring the manager's collectors.

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

func RecordWeakCacheHit() {
	globalManager.weakCacheHits.Inc()
}

func RecordWeakCacheMiss(reason string) {
	globalManager.weakCacheMisses.WithLabelValues(reason).Inc()
}

func RecordRecommendationBatch(size int) {
	globalManager.recommendationBatches.Inc()
	globalManager.recommendationSize.Observe(float64(size))
}

func RecordContestCacheHit() {
	globalManager.contestCacheHits.Inc()
}

func RecordContestStaleServe() {
	globalManager.contestStaleServes.Inc()
}

func RecordContestRebuild(outcome string, durationMS float64) {
	globalManager.contestRebuilds.WithLabelValues(outcome).Inc()
	globalManager.contestRebuildLatency.Observe(durationMS)
}

func RecordRemoteCall(kind, outcome string, durationMS float64) {
	globalManager.remoteCalls.WithLabelValues(kind, outcome).Inc()
	globalManager.remoteCallDuration.WithLabelValues(kind).Observe(durationMS)
}
