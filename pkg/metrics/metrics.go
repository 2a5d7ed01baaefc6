package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Search pipeline metrics
	JobsSubmitted  *prometheus.CounterVec
	JobsFinished   *prometheus.CounterVec
	JobDuration    *prometheus.HistogramVec
	AICallDuration prometheus.Histogram

	// Logo cache metrics
	LogoCacheHits   prometheus.Counter
	LogoCacheMisses prometheus.Counter

	// Database metrics
	DBConnections prometheus.Gauge
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		JobsSubmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_jobs_submitted_total",
				Help: "Total number of search jobs accepted for background execution",
			},
			[]string{"type"}, // competitor_search, competitor_lookup
		),
		JobsFinished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_jobs_finished_total",
				Help: "Total number of search jobs that reached a terminal status",
			},
			[]string{"type", "status"}, // completed, failed
		),
		JobDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_job_duration_seconds",
				Help:    "End-to-end search job duration in seconds",
				Buckets: []float64{1, 5, 10, 20, 30, 60, 90, 120, 180},
			},
			[]string{"type"},
		),
		AICallDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ai_call_duration_seconds",
			Help:    "Model completion call duration in seconds",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 90},
		}),

		LogoCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "logo_cache_hits_total",
			Help: "Total number of logo lookups served from cache",
		}),
		LogoCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "logo_cache_misses_total",
			Help: "Total number of logo lookups that went to the network",
		}),

		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		}),
	}
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := c.Path() // route pattern, not the raw URL

			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, status).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, status).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// All recorders tolerate a nil receiver so components can run without a
// metrics instance wired in, notably under test.

// RecordJobSubmitted increments the submitted jobs counter.
func (m *Metrics) RecordJobSubmitted(taskType string) {
	if m == nil {
		return
	}
	m.JobsSubmitted.WithLabelValues(taskType).Inc()
}

// RecordJobFinished records a terminal job outcome and its duration.
func (m *Metrics) RecordJobFinished(taskType, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.JobsFinished.WithLabelValues(taskType, status).Inc()
	m.JobDuration.WithLabelValues(taskType).Observe(duration.Seconds())
}

// RecordAICall records one model completion call duration.
func (m *Metrics) RecordAICall(duration time.Duration) {
	if m == nil {
		return
	}
	m.AICallDuration.Observe(duration.Seconds())
}

// RecordLogoCacheHit increments the logo cache hit counter.
func (m *Metrics) RecordLogoCacheHit() {
	if m == nil {
		return
	}
	m.LogoCacheHits.Inc()
}

// RecordLogoCacheMiss increments the logo cache miss counter.
func (m *Metrics) RecordLogoCacheMiss() {
	if m == nil {
		return
	}
	m.LogoCacheMisses.Inc()
}

// UpdateDBConnections updates the active database connections gauge.
func (m *Metrics) UpdateDBConnections(count float64) {
	if m == nil {
		return
	}
	m.DBConnections.Set(count)
}
