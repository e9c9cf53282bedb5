package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Simulation latencies sit in the microsecond range.
var simulationBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Manager owns every Prometheus collector the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Engine
	simulations       *prometheus.CounterVec
	simulationLatency prometheus.Histogram
	tokenDecodes      *prometheus.CounterVec
	scorecards        prometheus.Counter

	// Model store
	storeOps     *prometheus.CounterVec
	storeLatency *prometheus.HistogramVec

	// Leaderboard
	leaderboardSize    *prometheus.GaugeVec
	leaderboardUpdates prometheus.Counter

	// Grading jobs
	jobsEnqueued  *prometheus.CounterVec
	queueDepth    prometheus.Gauge
	jobsProcessed *prometheus.CounterVec
	jobLatency    prometheus.Histogram
	workers       prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// Runtime
	goroutines  prometheus.Gauge
	memoryBytes prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // package-level recorder

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fanhop",
		subsystem:        "bracket",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.simulations = auto.NewCounterVec(
		m.counterOpts("simulations_total", "Tournament simulations by edition and weight source"),
		[]string{"edition", "source"},
	)
	m.simulationLatency = auto.NewHistogram(
		m.histogramOpts("simulation_latency_milliseconds", "Full 63-game simulation latency in milliseconds", simulationBuckets),
	)
	m.tokenDecodes = auto.NewCounterVec(
		m.counterOpts("token_decodes_total", "Token decodes by codec and outcome"),
		[]string{"codec", "outcome"},
	)
	m.scorecards = auto.NewCounter(
		m.counterOpts("scorecards_total", "Brackets graded against actual results"),
	)

	m.storeOps = auto.NewCounterVec(
		m.counterOpts("store_operations_total", "Model store operations by driver, op and outcome"),
		[]string{"driver", "op", "outcome"},
	)
	m.storeLatency = auto.NewHistogramVec(
		m.histogramOpts("store_latency_milliseconds", "Model store latency in milliseconds", m.histogramBuckets),
		[]string{"driver", "op"},
	)

	m.leaderboardSize = auto.NewGaugeVec(
		m.gaugeOpts("leaderboard_entries", "Public models currently ranked per edition"),
		[]string{"edition"},
	)
	m.leaderboardUpdates = auto.NewCounter(
		m.counterOpts("leaderboard_updates_total", "Leaderboard insertions and updates"),
	)

	m.jobsEnqueued = auto.NewCounterVec(
		m.counterOpts("jobs_enqueued_total", "Grading jobs offered to the queue by outcome"),
		[]string{"outcome"},
	)
	m.queueDepth = auto.NewGauge(m.gaugeOpts("queue_depth", "Grading jobs waiting in the queue"))
	m.jobsProcessed = auto.NewCounterVec(
		m.counterOpts("jobs_processed_total", "Grading jobs handled by kind and outcome"),
		[]string{"kind", "outcome"},
	)
	m.jobLatency = auto.NewHistogram(
		m.histogramOpts("job_latency_milliseconds", "Grading job latency in milliseconds", m.histogramBuckets),
	)
	m.workers = auto.NewGauge(m.gaugeOpts("workers", "Running grading workers"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)

	m.goroutines = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.memoryBytes = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap in use in bytes"))
}

// RecordSimulation counts one simulation; source is "weights", "token", "preset" or "default".
func RecordSimulation(edition, source string, latencyMs float64) {
	globalManager.simulations.WithLabelValues(edition, source).Inc()
	globalManager.simulationLatency.Observe(latencyMs)
}

// RecordTokenDecode records a decode attempt for codec "model" or "bracket".
func RecordTokenDecode(codec string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "rejected"
	}
	globalManager.tokenDecodes.WithLabelValues(codec, outcome).Inc()
}

// RecordScorecard counts a bracket graded against actual results.
func RecordScorecard() {
	globalManager.scorecards.Inc()
}

// RecordStoreOp records a model store call.
func RecordStoreOp(driver, op string, err error, latencyMs float64) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	globalManager.storeOps.WithLabelValues(driver, op, outcome).Inc()
	globalManager.storeLatency.WithLabelValues(driver, op).Observe(latencyMs)
}

// UpdateLeaderboardSize sets the number of ranked models for an edition.
func UpdateLeaderboardSize(edition string, n int) {
	globalManager.leaderboardSize.WithLabelValues(edition).Set(float64(n))
}

// RecordLeaderboardUpdate increments the leaderboard updates counter.
func RecordLeaderboardUpdate() {
	globalManager.leaderboardUpdates.Inc()
}

// RecordJobEnqueue records an enqueue attempt; outcome is "queued", "coalesced" or "rejected".
func RecordJobEnqueue(outcome string) {
	globalManager.jobsEnqueued.WithLabelValues(outcome).Inc()
}

// UpdateQueueDepth sets the number of waiting jobs.
func UpdateQueueDepth(n int) {
	globalManager.queueDepth.Set(float64(n))
}

// RecordJobProcessed records a handled job.
func RecordJobProcessed(kind string, err error, latencyMs float64) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	globalManager.jobsProcessed.WithLabelValues(kind, outcome).Inc()
	globalManager.jobLatency.Observe(latencyMs)
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(n int) {
	globalManager.workers.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.goroutines.Set(float64(count))
}

// UpdateSystemMemoryUsage sets heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.memoryBytes.Set(float64(bytes))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
