// Package metrics provides Prometheus metrics for the VIBE scoring service.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultRefreshInterval = 10 * time.Second

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Scoring runs
	scoringRuns       *prometheus.CounterVec
	scoringDuration   prometheus.Histogram
	rosterSize        prometheus.Histogram
	playersUnscored   *prometheus.CounterVec
	recordsRejected   *prometheus.CounterVec
	degenerateCohorts *prometheus.CounterVec
	degenerateLeagues prometheus.Counter

	// Boards
	seasonsTracked  prometheus.Gauge
	playersRanked   *prometheus.GaugeVec
	boardPublishes  prometheus.Counter
	publishDuration prometheus.Histogram
	queryDuration   *prometheus.HistogramVec

	// Submissions and jobs
	submissionsAccepted  prometheus.Counter
	submissionsDuplicate prometheus.Counter
	submissionsRejected  *prometheus.CounterVec
	jobsCompleted        *prometheus.CounterVec
	jobDuration          prometheus.Histogram

	// Queue
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueDequeued    prometheus.Counter
	queueFull        prometheus.Counter
	queueWait        prometheus.Histogram

	// Workers
	workerCount  prometheus.Gauge
	workerActive prometheus.Gauge
	workerErrors prometheus.Counter

	// Upstream feed
	feedRequests *prometheus.CounterVec
	feedDuration prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level recorders

// customRegistry keeps the default Go collectors off /metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // shared metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "vibe",
		subsystem:        "service",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// RefreshInterval is how often system gauges should be sampled.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// Enabled reports whether recording is on.
func (m *Manager) Enabled() bool { return m.enabled }

func (m *Manager) name(n string) string { return m.metricPrefix + n }

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels, Buckets: buckets,
	}
}

var (
	msBuckets   = []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500}
	sizeBuckets = []float64{1, 10, 50, 100, 250, 500, 1000, 2500, 5000}
)

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.scoringRuns = auto.NewCounterVec(m.counterOpts("scoring_runs_total",
		"Scoring runs by outcome"), []string{"outcome"})
	m.scoringDuration = auto.NewHistogram(m.histogramOpts("scoring_duration_milliseconds",
		"Wall time of one full roster scoring run", msBuckets))
	m.rosterSize = auto.NewHistogram(m.histogramOpts("roster_size",
		"Records per scored roster", sizeBuckets))
	m.playersUnscored = auto.NewCounterVec(m.counterOpts("players_unscored_total",
		"Players kept as unscored, by reason"), []string{"reason"})
	m.recordsRejected = auto.NewCounterVec(m.counterOpts("records_rejected_total",
		"Input records rejected as invalid, by reason"), []string{"reason"})
	m.degenerateCohorts = auto.NewCounterVec(m.counterOpts("degenerate_cohorts_total",
		"Metric cohorts without spread, resolved to z = 0"), []string{"metric", "scope"})
	m.degenerateLeagues = auto.NewCounter(m.counterOpts("degenerate_leagues_total",
		"Runs whose shrunk scores had no spread"))

	m.seasonsTracked = auto.NewGauge(m.gaugeOpts("seasons_tracked",
		"Seasons with a published board"))
	m.playersRanked = auto.NewGaugeVec(m.gaugeOpts("players_ranked",
		"Scored players on the published board"), []string{"season"})
	m.boardPublishes = auto.NewCounter(m.counterOpts("board_publishes_total",
		"Season boards published"))
	m.publishDuration = auto.NewHistogram(m.histogramOpts("board_publish_duration_milliseconds",
		"Time to build and swap a season board", msBuckets))
	m.queryDuration = auto.NewHistogramVec(m.histogramOpts("board_query_duration_milliseconds",
		"Board read latency", msBuckets), []string{"op"})

	m.submissionsAccepted = auto.NewCounter(m.counterOpts("submissions_accepted_total",
		"Roster submissions accepted for scoring"))
	m.submissionsDuplicate = auto.NewCounter(m.counterOpts("submissions_duplicate_total",
		"Roster submissions acknowledged as duplicates"))
	m.submissionsRejected = auto.NewCounterVec(m.counterOpts("submissions_rejected_total",
		"Roster submissions refused"), []string{"reason"})
	m.jobsCompleted = auto.NewCounterVec(m.counterOpts("jobs_completed_total",
		"Scoring jobs finished, by status"), []string{"status"})
	m.jobDuration = auto.NewHistogram(m.histogramOpts("job_duration_milliseconds",
		"Time from dequeue to published board", msBuckets))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Jobs waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue size over capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Jobs enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Jobs dequeued"))
	m.queueFull = auto.NewCounter(m.counterOpts("queue_full_total", "Enqueue attempts refused by backpressure"))
	m.queueWait = auto.NewHistogram(m.histogramOpts("queue_wait_milliseconds",
		"Time a job spent queued", msBuckets))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured workers"))
	m.workerActive = auto.NewGauge(m.gaugeOpts("worker_active", "Workers currently scoring"))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Jobs that failed in a worker"))

	m.feedRequests = auto.NewCounterVec(m.counterOpts("feed_requests_total",
		"Upstream stats feed fetches, by source and outcome"), []string{"source", "outcome"})
	m.feedDuration = auto.NewHistogram(m.histogramOpts("feed_duration_milliseconds",
		"Upstream stats feed fetch latency", nil))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", msBuckets), []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total",
		"Errors by component and type"), []string{"component", "error_type"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"Errors by endpoint, method and type"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds",
		"GC pause time in milliseconds", msBuckets))
}

func on() bool { return globalManager != nil && globalManager.enabled }

// Scoring.

// RecordScoringRun records one run's outcome ("ok", "canceled", "error").
func RecordScoringRun(outcome string, d time.Duration, rosterSize int) {
	if !on() {
		return
	}
	globalManager.scoringRuns.WithLabelValues(outcome).Inc()
	globalManager.scoringDuration.Observe(ms(d))
	globalManager.rosterSize.Observe(float64(rosterSize))
}

// RecordUnscored counts players kept as unscored.
func RecordUnscored(reason string, n int) {
	if !on() || n <= 0 {
		return
	}
	globalManager.playersUnscored.WithLabelValues(reason).Add(float64(n))
}

// RecordRejected counts rejected input records.
func RecordRejected(reason string, n int) {
	if !on() || n <= 0 {
		return
	}
	globalManager.recordsRejected.WithLabelValues(reason).Add(float64(n))
}

// RecordDegenerateCohort counts a metric cohort without spread.
func RecordDegenerateCohort(metric, scope string) {
	if !on() {
		return
	}
	globalManager.degenerateCohorts.WithLabelValues(metric, scope).Inc()
}

// RecordDegenerateLeague counts a run whose league std was zero.
func RecordDegenerateLeague() {
	if !on() {
		return
	}
	globalManager.degenerateLeagues.Inc()
}

// Boards.

// UpdateSeasonsTracked sets the number of published seasons.
func UpdateSeasonsTracked(n int) {
	if !on() {
		return
	}
	globalManager.seasonsTracked.Set(float64(n))
}

// UpdatePlayersRanked sets the scored player count of a season board.
func UpdatePlayersRanked(season string, n int) {
	if !on() {
		return
	}
	globalManager.playersRanked.WithLabelValues(season).Set(float64(n))
}

// RecordBoardPublish records a board publish and its latency.
func RecordBoardPublish(d time.Duration) {
	if !on() {
		return
	}
	globalManager.boardPublishes.Inc()
	globalManager.publishDuration.Observe(ms(d))
}

// RecordBoardQuery records read latency for op ("top", "rank", "player").
func RecordBoardQuery(op string, d time.Duration) {
	if !on() {
		return
	}
	globalManager.queryDuration.WithLabelValues(op).Observe(ms(d))
}

// Submissions and jobs.

// RecordSubmissionAccepted counts an accepted roster submission.
func RecordSubmissionAccepted() {
	if !on() {
		return
	}
	globalManager.submissionsAccepted.Inc()
}

// RecordSubmissionDuplicate counts a duplicate roster submission.
func RecordSubmissionDuplicate() {
	if !on() {
		return
	}
	globalManager.submissionsDuplicate.Inc()
}

// RecordSubmissionRejected counts a refused roster submission.
func RecordSubmissionRejected(reason string) {
	if !on() {
		return
	}
	globalManager.submissionsRejected.WithLabelValues(reason).Inc()
}

// RecordJobCompleted records a finished job with its status.
func RecordJobCompleted(status string, d time.Duration) {
	if !on() {
		return
	}
	globalManager.jobsCompleted.WithLabelValues(status).Inc()
	globalManager.jobDuration.Observe(ms(d))
}

// Queue.

// UpdateQueueSize sets the current queue size and utilisation.
func UpdateQueueSize(size, capacity int) {
	if !on() {
		return
	}
	globalManager.queueSize.Set(float64(size))
	if capacity > 0 {
		globalManager.queueCapacity.Set(float64(capacity))
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// RecordQueueEnqueue counts an enqueued job.
func RecordQueueEnqueue() {
	if !on() {
		return
	}
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a dequeued job and how long it waited.
func RecordQueueDequeue(wait time.Duration) {
	if !on() {
		return
	}
	globalManager.queueDequeued.Inc()
	globalManager.queueWait.Observe(ms(wait))
}

// RecordQueueFull counts an enqueue refused by backpressure.
func RecordQueueFull() {
	if !on() {
		return
	}
	globalManager.queueFull.Inc()
}

// Workers.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(n int) {
	if !on() {
		return
	}
	globalManager.workerCount.Set(float64(n))
}

// UpdateWorkerActiveCount sets the number of workers currently scoring.
func UpdateWorkerActiveCount(n int) {
	if !on() {
		return
	}
	globalManager.workerActive.Set(float64(n))
}

// RecordWorkerError counts a failed job.
func RecordWorkerError() {
	if !on() {
		return
	}
	globalManager.workerErrors.Inc()
}

// Feed.

// RecordFeedRequest records one upstream fetch.
func RecordFeedRequest(source, outcome string, d time.Duration) {
	if !on() {
		return
	}
	globalManager.feedRequests.WithLabelValues(source, outcome).Inc()
	globalManager.feedDuration.Observe(ms(d))
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !on() {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if !on() {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !on() {
		return
	}
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !on() {
		return
	}
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !on() {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if !on() {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !on() {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

// Value reads the current value of a counter, gauge or histogram sample
// count from the service registry. Every label in labels must match.
func Value(name string, labels map[string]string) (float64, error) {
	families, err := customRegistry.Gather()
	if err != nil {
		return 0, fmt.Errorf("gather: %w", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if !labelsMatch(metric.GetLabel(), labels) {
				continue
			}
			switch {
			case metric.GetCounter() != nil:
				return metric.GetCounter().GetValue(), nil
			case metric.GetGauge() != nil:
				return metric.GetGauge().GetValue(), nil
			case metric.GetHistogram() != nil:
				return float64(metric.GetHistogram().GetSampleCount()), nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrMetricNotFound, name)
}

func labelsMatch[L interface {
	GetName() string
	GetValue() string
}](pairs []L, want map[string]string) bool {
	matched := 0
	for _, p := range pairs {
		if v, ok := want[p.GetName()]; ok {
			if v != p.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(want)
}
