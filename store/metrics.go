package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus collectors shared by every store created with them.
//
// Collected:
//   - <ns>_store_actions_total: actions reduced, by store and action type
//   - <ns>_store_reduce_duration_seconds: duration of one reducer pass
//   - <ns>_store_effects_in_flight: running tasks
//   - <ns>_store_dropped_deliveries_total: task actions dropped after cancellation
//   - <ns>_store_issues_total: programmer errors reported
type Metrics struct {
	actionsTotal      *prometheus.CounterVec
	reduceDuration    *prometheus.HistogramVec
	effectsInFlight   *prometheus.GaugeVec
	droppedDeliveries *prometheus.CounterVec
	issuesTotal       *prometheus.CounterVec
}

func NewMetrics(registry prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(registry)
	const subsystem = "store"

	return &Metrics{
		actionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "actions_total",
			Help:      "Total number of actions reduced",
		}, []string{"store", "action"}),

		reduceDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reduce_duration_seconds",
			Help:      "Duration of one reducer pass in seconds",
			Buckets:   []float64{.00001, .0001, .001, .01, .1},
		}, []string{"store"}),

		effectsInFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "effects_in_flight",
			Help:      "Number of running effect tasks",
		}, []string{"store"}),

		droppedDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dropped_deliveries_total",
			Help:      "Actions from cancelled effect tasks that were not reduced",
		}, []string{"store"}),

		issuesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "issues_total",
			Help:      "Programmer errors reported by the runtime",
		}, []string{"store"}),
	}
}
