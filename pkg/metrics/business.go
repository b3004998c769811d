package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const businessSubsystem = "membership"

var (
	// ReconcileTotal counts Fix outcomes by action.
	ReconcileTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: businessSubsystem,
		Name:      "reconcile_total",
		Help:      "Reconciliation outcomes partitioned by action.",
	}, []string{"action"})

	// SweepRunsTotal counts expired-subscription sweeps by result.
	SweepRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: businessSubsystem,
		Name:      "sweep_runs_total",
		Help:      "Expired subscription sweeps partitioned by result.",
	}, []string{"result"})

	// SweepDuration observes sweep latency in milliseconds.
	SweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Subsystem: businessSubsystem,
		Name:      "sweep_dur_ms",
		Help:      "Expired subscription sweep latency in milliseconds.",
		Buckets:   HistogramBuckets,
	})

	// NotificationsTotal counts payment notifications by txn_type and status.
	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: businessSubsystem,
		Name:      "notifications_total",
		Help:      "Payment notifications partitioned by txn_type and handling status.",
	}, []string{"txn_type", "status"})

	registerOnce sync.Once
)

// RegisterBusinessMetrics registers the business collectors once with reg.
func RegisterBusinessMetrics(reg prometheus.Registerer, log Logger) {
	registerOnce.Do(func() {
		for _, c := range []prometheus.Collector{ReconcileTotal, SweepRunsTotal, SweepDuration, NotificationsTotal} {
			if err := reg.Register(c); err != nil && log != nil {
				log.Errorf("business metric could not be registered in Prometheus, err=%v", err)
			}
		}
	})
}

// MillisecondsSince returns the elapsed time since start in milliseconds.
func MillisecondsSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
