package lock

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeAcquired  = "acquired"
	outcomeTimeout   = "timeout"
	outcomeCancelled = "cancelled"
)

var (
	acquireTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "account_lock_acquire_total",
		Help: "Account lease acquisitions, labeled by outcome",
	}, []string{"outcome"})

	acquireWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "account_lock_wait_seconds",
		Help:    "Time spent waiting for an account lease",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	heldDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "account_lock_held_seconds",
		Help:    "Time an account lease was held before release",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 5},
	})
)
