// Package metrics exposes Prometheus counters for pipeline and maintenance
// activity. The status server serves them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	StepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kioskforge",
			Name:      "steps_total",
			Help:      "Steps executed, by module.",
		},
		[]string{"module"},
	)

	StepsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kioskforge",
			Name:      "steps_failed_total",
			Help:      "Steps that exhausted their retry policy, by module.",
		},
		[]string{"module"},
	)

	StepRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kioskforge",
			Name:      "step_retries_total",
			Help:      "Retry attempts, by module.",
		},
		[]string{"module"},
	)

	MaintenanceRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kioskforge",
			Name:      "maintenance_runs_total",
			Help:      "Daily maintenance runs, by outcome.",
		},
		[]string{"outcome"},
	)

	VacuumedBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kioskforge",
			Name:      "vacuumed_bytes_total",
			Help:      "Log bytes deleted by the vacuumer.",
		},
	)
)

// Register installs the collectors into the default registry. Called once by
// the serve command; library code only increments.
func Register() {
	prometheus.MustRegister(StepsTotal, StepsFailed, StepRetries, MaintenanceRuns, VacuumedBytes)
}
