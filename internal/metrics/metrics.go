package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the adboard service.
type Metrics struct {
	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Dashboard metrics
	DashboardQueries *prometheus.CounterVec
	DashboardRows    prometheus.Histogram

	// Sync metrics
	SyncRuns        *prometheus.CounterVec
	SyncedCampaigns prometheus.Counter
	SyncedMetrics   prometheus.Counter

	// Insight metrics
	InsightsGenerated *prometheus.CounterVec

	// Storage metrics
	StoreErrors *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by method, path and status",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"path"},
		),
		DashboardQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dashboard_queries_total",
				Help:      "Dashboard aggregation calls by outcome",
			},
			[]string{"status"},
		),
		DashboardRows: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dashboard_rows_fetched",
				Help:      "Metric rows fetched per dashboard aggregation",
				Buckets:   []float64{0, 10, 50, 100, 500, 1000, 5000, 10000},
			},
		),
		SyncRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_runs_total",
				Help:      "Sync runs by outcome",
			},
			[]string{"status"},
		),
		SyncedCampaigns: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "synced_campaigns_total",
				Help:      "Campaigns inserted by sync runs",
			},
		),
		SyncedMetrics: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "synced_metrics_total",
				Help:      "Metric rows inserted by sync runs",
			},
		),
		InsightsGenerated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "insights_generated_total",
				Help:      "Insights generated by type",
			},
			[]string{"insight_type"},
		),
		StoreErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_errors_total",
				Help:      "Persistence errors by operation",
			},
			[]string{"operation"},
		),
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"path"},
		),
	}
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records one completed HTTP request.
func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordDashboard records one dashboard aggregation call.
func (m *Metrics) RecordDashboard(status string, rows int) {
	if m == nil {
		return
	}
	m.DashboardQueries.WithLabelValues(status).Inc()
	if status == "ok" {
		m.DashboardRows.Observe(float64(rows))
	}
}

// RecordSync records one sync run outcome and its insert counts.
func (m *Metrics) RecordSync(status string, campaigns, metricRows int) {
	if m == nil {
		return
	}
	m.SyncRuns.WithLabelValues(status).Inc()
	m.SyncedCampaigns.Add(float64(campaigns))
	m.SyncedMetrics.Add(float64(metricRows))
}

// RecordInsight records one generated insight.
func (m *Metrics) RecordInsight(insightType string) {
	if m == nil {
		return
	}
	m.InsightsGenerated.WithLabelValues(insightType).Inc()
}

// RecordStoreError records a persistence failure.
func (m *Metrics) RecordStoreError(operation string) {
	if m == nil {
		return
	}
	m.StoreErrors.WithLabelValues(operation).Inc()
}

// RecordRateLimitHit records a rejected request.
func (m *Metrics) RecordRateLimitHit(path string) {
	if m == nil {
		return
	}
	m.RateLimitHits.WithLabelValues(path).Inc()
}
