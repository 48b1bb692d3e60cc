package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// SchedulerMetrics are the collectors the scheduler and keeper update.
type SchedulerMetrics struct {
	executions     *prometheus.CounterVec
	cancellations  *prometheus.CounterVec
	keeperPolls    prometheus.Counter
	activePayments prometheus.Gauge
}

var (
	schedulerOnce     sync.Once
	schedulerRegistry *SchedulerMetrics
)

// Scheduler returns the process-wide collectors, registering them on first use.
func Scheduler() *SchedulerMetrics {
	schedulerOnce.Do(func() {
		schedulerRegistry = &SchedulerMetrics{
			executions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "recurpay",
				Name:      "executions_total",
				Help:      "Recurring payment execute() calls by result.",
			}, []string{"result"}),
			cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "recurpay",
				Name:      "cancellations_total",
				Help:      "Recurring payment cancellations by reason.",
			}, []string{"reason"}),
			keeperPolls: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "recurpay",
				Name:      "keeper_polls_total",
				Help:      "Keeper poll rounds started.",
			}),
			activePayments: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "recurpay",
				Name:      "active_payments",
				Help:      "Recurring payments currently active.",
			}),
		}
		prometheus.MustRegister(
			schedulerRegistry.executions,
			schedulerRegistry.cancellations,
			schedulerRegistry.keeperPolls,
			schedulerRegistry.activePayments,
		)
	})
	return schedulerRegistry
}

func (m *SchedulerMetrics) ObserveExecution(result string) {
	if m == nil {
		return
	}
	if result == "" {
		result = "unknown"
	}
	m.executions.WithLabelValues(result).Inc()
}

func (m *SchedulerMetrics) ObserveCancellation(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.cancellations.WithLabelValues(reason).Inc()
}

func (m *SchedulerMetrics) ObserveKeeperPoll() {
	if m == nil {
		return
	}
	m.keeperPolls.Inc()
}

func (m *SchedulerMetrics) SetActivePayments(n int64) {
	if m == nil {
		return
	}
	m.activePayments.Set(float64(n))
}
