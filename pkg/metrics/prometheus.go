// Package metrics provides Prometheus metrics for the validation service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the validation service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Core Validation Metrics - outcome and latency per record kind
	validationsTotal  *prometheus.CounterVec
	validationLatency prometheus.Histogram
	parseFailures     prometheus.Counter
	schemaViolations  prometheus.Counter

	// Validator Cache Metrics
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	cacheInsertions     prometheus.Counter
	cacheEvictions      prometheus.Counter
	cacheStaleRecompile prometheus.Counter
	cacheSize           prometheus.Gauge

	// Recovery Metrics - strategy attempts and session outcomes
	recoveryAttempts  *prometheus.CounterVec
	recoveryLatency   prometheus.Histogram
	recoverySessions  *prometheus.CounterVec
	recoveryExhausted prometheus.Counter

	// Batch Metrics
	batchesTotal      prometheus.Counter
	batchSize         prometheus.Histogram
	batchLatency      prometheus.Histogram
	batchItemFailures prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "sji",
		subsystem:        "validation",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Validation Metrics - outcome and latency of every validation
	m.validationsTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "validations_total",
			Help:      "Total number of validations by record kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	m.validationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_latency_milliseconds",
		Help:      "Histogram of schema validation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.parseFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "parse_failures_total",
		Help:      "Total number of payloads that were not valid JSON",
	})

	m.schemaViolations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "schema_violations_total",
		Help:      "Total number of payloads rejected by schema validation",
	})

	// Validator Cache Metrics - hit ratio drives the optimizer's advice
	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Total number of compiled-validator cache hits",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Total number of compiled-validator cache misses",
	})

	m.cacheInsertions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_insertions_total",
		Help:      "Total number of validators compiled and inserted into the cache",
	})

	m.cacheEvictions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_evictions_total",
		Help:      "Total number of validators evicted by the LRU policy",
	})

	m.cacheStaleRecompile = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_stale_recompiles_total",
		Help:      "Total number of stale cache entries recompiled in place",
	})

	m.cacheSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_size",
		Help:      "Current number of compiled validators held in the cache",
	})

	// Recovery Metrics - strategy attempts and session outcomes
	m.recoveryAttempts = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "recovery_attempts_total",
			Help:      "Total number of recovery strategy attempts by strategy",
		},
		[]string{"strategy"},
	)

	m.recoveryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recovery_attempt_latency_milliseconds",
		Help:      "Histogram of per-attempt recovery latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.recoverySessions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "recovery_sessions_total",
			Help:      "Total number of finished recovery sessions by winning strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	m.recoveryExhausted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recovery_exhausted_total",
		Help:      "Total number of recovery sessions that exhausted every strategy",
	})

	// Batch Metrics
	m.batchesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batches_total",
		Help:      "Total number of batch validation calls",
	})

	m.batchSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_size",
		Help:      "Histogram of batch sizes submitted for validation",
		Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 250, 500},
	})

	m.batchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_latency_milliseconds",
		Help:      "Histogram of whole-batch processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.batchItemFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_item_failures_total",
		Help:      "Total number of batch items that failed after recovery",
	})

	// HTTP Performance Metrics - user experience indicators
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds (user experience)",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// Validation Metrics Functions.

// RecordValidation records one finished validation by kind and outcome.
func RecordValidation(kind string, success bool) {
	globalManager.validationsTotal.WithLabelValues(kind, outcomeLabel(success)).Inc()
}

// RecordValidationLatency records schema validation latency in milliseconds.
func RecordValidationLatency(latencyMs float64) {
	globalManager.validationLatency.Observe(latencyMs)
}

// RecordParseFailure increments the malformed-JSON counter.
func RecordParseFailure() {
	globalManager.parseFailures.Inc()
}

// RecordSchemaViolation increments the schema-rejection counter.
func RecordSchemaViolation() {
	globalManager.schemaViolations.Inc()
}

// Cache Metrics Functions.

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordCacheInsertion increments the cache insertion counter.
func RecordCacheInsertion() {
	globalManager.cacheInsertions.Inc()
}

// RecordCacheEviction increments the cache eviction counter.
func RecordCacheEviction() {
	globalManager.cacheEvictions.Inc()
}

// RecordCacheStaleRecompile increments the stale-recompile counter.
func RecordCacheStaleRecompile() {
	globalManager.cacheStaleRecompile.Inc()
}

// UpdateCacheSize sets the current number of cached validators.
func UpdateCacheSize(size int) {
	globalManager.cacheSize.Set(float64(size))
}

// Recovery Metrics Functions.

// RecordRecoveryAttempt increments the attempt counter for a strategy.
func RecordRecoveryAttempt(strategy string) {
	globalManager.recoveryAttempts.WithLabelValues(strategy).Inc()
}

// RecordRecoveryLatency records per-attempt recovery latency.
func RecordRecoveryLatency(latencyMs float64) {
	globalManager.recoveryLatency.Observe(latencyMs)
}

// RecordRecoverySession records a finished session with its winning strategy.
// An empty strategy means no strategy produced a valid value.
func RecordRecoverySession(strategy string, success bool) {
	if strategy == "" {
		strategy = "none"
	}
	globalManager.recoverySessions.WithLabelValues(strategy, outcomeLabel(success)).Inc()
}

// RecordRecoveryExhausted increments the exhausted-session counter.
func RecordRecoveryExhausted() {
	globalManager.recoveryExhausted.Inc()
}

// Batch Metrics Functions.

// RecordBatch records one batch call and its size.
func RecordBatch(size int) {
	globalManager.batchesTotal.Inc()
	globalManager.batchSize.Observe(float64(size))
}

// RecordBatchLatency records whole-batch processing latency.
func RecordBatchLatency(latencyMs float64) {
	globalManager.batchLatency.Observe(latencyMs)
}

// RecordBatchItemFailure increments the failed-item counter.
func RecordBatchItemFailure() {
	globalManager.batchItemFailures.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

func outcomeLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
