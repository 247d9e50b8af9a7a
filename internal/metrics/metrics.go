package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label value constants to prevent typos
const (
	ResultSuccess  = "success"
	ResultAuth     = "auth_error"
	ResultNotFound = "not_found"
	ResultRemote   = "remote_error"
)

var (
	SyncAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hikelog_sync_attempts_total",
			Help: "Total number of hike sync attempts by result",
		},
		[]string{"result"},
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hikelog_sync_duration_seconds",
			Help:    "End-to-end duration of a hike sync attempt",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	SyncBundleObservations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hikelog_sync_bundle_observations",
			Help:    "Number of observations transmitted per sync bundle",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hikelog_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "path", "status_code"},
	)
)
