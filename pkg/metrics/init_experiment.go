package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initExperimentMetrics() {
	r.ScenariosTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "qosbench_scenarios_total",
			Help: "Total number of scenarios generated",
		},
	)

	r.ScenariosSkippedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "qosbench_scenarios_skipped_total",
			Help: "Scenarios skipped because the network had fewer than two nodes",
		},
	)

	r.TrialsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "qosbench_trials_total",
			Help: "Total number of route searches by algorithm and outcome",
		},
		[]string{"algorithm", "outcome"},
	)

	r.NetworkNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "qosbench_network_nodes",
			Help: "Node count of the most recently generated network",
		},
	)

	r.NetworkEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "qosbench_network_edges",
			Help: "Edge count of the most recently generated network",
		},
	)
}
