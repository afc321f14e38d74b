package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Sync pipeline metrics
	SyncRunsTotal   *prometheus.CounterVec
	SyncRunDuration *prometheus.HistogramVec
	SyncRunsActive  prometheus.Gauge
	ReportJobsTotal *prometheus.CounterVec
	RowsNormalized  *prometheus.CounterVec

	// Upstream API metrics
	UpstreamCalls    *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	UpstreamFailures *prometheus.CounterVec

	// Submission classification, incl. unrecognized error signatures so
	// upstream message-format drift shows up in dashboards
	SubmissionClasses *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		SyncRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sync_runs_total",
				Help: "Total number of report sync runs by outcome",
			},
			[]string{"status"},
		),

		SyncRunDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sync_run_duration_seconds",
				Help:    "Report sync run duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 90, 120, 180},
			},
			[]string{"status"},
		),

		SyncRunsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "sync_runs_active",
				Help: "Number of sync runs currently in progress",
			},
		),

		ReportJobsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_jobs_total",
				Help: "Total number of report jobs by type and terminal status",
			},
			[]string{"report", "status"},
		),

		RowsNormalized: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rows_normalized_total",
				Help: "Total number of report rows normalized",
			},
			[]string{"report"},
		),

		UpstreamCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_api_calls_total",
				Help: "Total number of upstream API calls",
			},
			[]string{"endpoint", "status"},
		),

		UpstreamDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "upstream_api_duration_seconds",
				Help:    "Upstream API call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),

		UpstreamFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_api_failures_total",
				Help: "Total number of upstream API failures",
			},
			[]string{"endpoint", "error_type"},
		),

		SubmissionClasses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_submission_classifications_total",
				Help: "Report submission failures by classified category",
			},
			[]string{"class"},
		),
	}
}

// HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Sync run metrics
func (m *Metrics) RecordSyncRun(status string, duration time.Duration) {
	m.SyncRunsTotal.WithLabelValues(status).Inc()
	m.SyncRunDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// Report job terminal states
func (m *Metrics) RecordReportJob(report, status string) {
	m.ReportJobsTotal.WithLabelValues(report, status).Inc()
}

// Normalized row counts
func (m *Metrics) RecordRowsNormalized(report string, count int) {
	m.RowsNormalized.WithLabelValues(report).Add(float64(count))
}

// Upstream API call metrics
func (m *Metrics) RecordUpstreamCall(endpoint, status string, duration time.Duration) {
	m.UpstreamCalls.WithLabelValues(endpoint, status).Inc()
	m.UpstreamDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// Upstream API failure metrics
func (m *Metrics) RecordUpstreamFailure(endpoint, errorType string) {
	m.UpstreamFailures.WithLabelValues(endpoint, errorType).Inc()
}

// Submission failure classification
func (m *Metrics) RecordSubmissionClass(class string) {
	m.SubmissionClasses.WithLabelValues(class).Inc()
}

// Sync runs in progress counter
func (m *Metrics) IncSyncRunsActive() {
	m.SyncRunsActive.Inc()
}

// Sync runs in progress counter
func (m *Metrics) DecSyncRunsActive() {
	m.SyncRunsActive.Dec()
}

// HTTP requests in flight counter
func (m *Metrics) IncHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// HTTP requests in flight counter
func (m *Metrics) DecHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}
