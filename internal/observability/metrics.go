// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leanvote_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "leanvote_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// VoteToggles counts vote toggle operations by outcome (voted/unvoted).
	VoteToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leanvote_vote_toggles_total",
		Help: "Total number of vote toggles by outcome",
	}, []string{"outcome"})

	// WidgetSubmissions counts widget post submissions by resolved category.
	WidgetSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leanvote_widget_submissions_total",
		Help: "Total number of widget submissions by category",
	}, []string{"category"})

	// WebhookEvents counts processed payment webhook events by type and result.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leanvote_webhook_events_total",
		Help: "Total number of payment webhook events by type and result",
	}, []string{"event_type", "result"})

	// BoardLookups counts public board resolution attempts by outcome.
	BoardLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leanvote_board_lookups_total",
		Help: "Total number of board lookups by outcome",
	}, []string{"outcome"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct{}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics() *DatabaseMetrics {
	return &DatabaseMetrics{}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
