package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Gateway call metrics
	gatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total number of payment gateway requests",
		},
		[]string{"path", "outcome"},
	)

	gatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Duration of payment gateway requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	// Status sync job metrics
	statusSyncBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_sync_batches_total",
			Help: "Total number of transaction search batches processed",
		},
		[]string{"outcome"},
	)

	statusSyncOrdersUpdated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "status_sync_orders_updated_total",
			Help: "Total number of orders whose payment status was updated",
		},
	)
)

// RecordGatewayCall records one gateway request with its duration and outcome
func RecordGatewayCall(path string, duration time.Duration, outcome string) {
	gatewayRequestsTotal.WithLabelValues(path, outcome).Inc()
	gatewayRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordStatusSyncBatch records one status sync batch result
func RecordStatusSyncBatch(outcome string, ordersUpdated int) {
	statusSyncBatchesTotal.WithLabelValues(outcome).Inc()
	statusSyncOrdersUpdated.Add(float64(ordersUpdated))
}
