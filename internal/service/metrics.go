package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	engineOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "peloton_engine_operations_total",
			Help: "Engine operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
	engineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "peloton_engine_operation_duration_seconds",
			Help:    "Engine operation duration in seconds, retries included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	engineRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "peloton_engine_transaction_retries_total",
			Help: "Transaction attempts that failed with a transient store error",
		},
		[]string{"operation"},
	)
)

func observeOperation(op, outcome string, elapsed time.Duration) {
	engineOperations.WithLabelValues(op, outcome).Inc()
	engineDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}
