package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Batch metrics
	BatchesProcessed prometheus.Counter
	BatchesFailed    prometheus.Counter

	// Feed metrics
	FeedEvents       *prometheus.CounterVec
	EchoesSuppressed *prometheus.CounterVec
	FeedReconnects   prometheus.Counter

	// Reconciliation metrics
	ReconciliationRuns     *prometheus.CounterVec
	ReconciliationDuration prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Alert metrics
	AlertsSent *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics. Call once per process:
// promauto registers against the default registry.
func New() *Metrics {
	return &Metrics{
		BatchesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reckon_batches_processed_total",
			Help: "Total number of settlement batches processed successfully",
		}),
		BatchesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reckon_batches_failed_total",
			Help: "Total number of settlement batch submissions rejected or failed",
		}),

		FeedEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reckon_feed_events_total",
				Help: "Total change feed events received by table and type",
			},
			[]string{"table", "type"},
		),
		EchoesSuppressed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reckon_feed_echoes_suppressed_total",
				Help: "Total own-write echoes recognized by table",
			},
			[]string{"table"},
		),
		FeedReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reckon_feed_reconnects_total",
			Help: "Total change feed re-subscriptions",
		}),

		ReconciliationRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reckon_reconciliation_runs_total",
				Help: "Total reconciliation runs by outcome",
			},
			[]string{"status"},
		),
		ReconciliationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "reckon_reconciliation_duration_seconds",
			Help:    "Duration of full reset-and-replay runs",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reckon_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reckon_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		AlertsSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reckon_alerts_total",
				Help: "Total alerts sent by severity",
			},
			[]string{"severity"},
		),
	}
}
