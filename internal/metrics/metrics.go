package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Local API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "t3n28_http_requests_total",
			Help: "Total number of local API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "t3n28_http_request_duration_seconds",
			Help:    "Local API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Backend Gateway Metrics
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "t3n28_backend_requests_total",
			Help: "Total number of backend API requests",
		},
		[]string{"method", "path", "status"},
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "t3n28_backend_request_duration_seconds",
			Help:    "Backend API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	SessionExpiriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "t3n28_session_expiries_total",
			Help: "Total number of 401 responses that cleared the session",
		},
	)

	// Quota Metrics
	QuotaUsed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "t3n28_quota_used",
			Help: "Server-reported proxied request count in the current window",
		},
	)

	QuotaLimit = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "t3n28_quota_limit",
			Help: "Server-reported daily request limit",
		},
	)

	QuotaWarningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "t3n28_quota_warnings_total",
			Help: "Total number of quota state transitions into warn or over",
		},
		[]string{"state"},
	)

	// Authorization Metrics
	FeatureDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "t3n28_feature_denied_total",
			Help: "Total number of actions denied by tier policy",
		},
		[]string{"feature"},
	)

	// Broadcast Metrics
	BroadcastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "t3n28_broadcasts_total",
			Help: "Total number of broadcast batches attempted",
		},
	)

	BroadcastDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "t3n28_broadcast_deliveries_total",
			Help: "Total number of per-channel delivery attempts",
		},
		[]string{"status"},
	)

	BroadcastChannelsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "t3n28_broadcast_channels_skipped_total",
			Help: "Configured channels omitted because of the tier channel limit",
		},
	)
)

// RecordBackendRequest records one backend call outcome
func RecordBackendRequest(method, path, status string, seconds float64) {
	BackendRequestsTotal.WithLabelValues(method, path, status).Inc()
	BackendRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// RecordQuota updates the quota gauges from a server snapshot
func RecordQuota(count, limit int) {
	QuotaUsed.Set(float64(count))
	QuotaLimit.Set(float64(limit))
}
