package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRoutingMetrics() {
	r.SearchDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qosbench_search_duration_seconds",
			Help:    "Route search duration in seconds, including training",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
		[]string{"algorithm"},
	)

	r.PathHops = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qosbench_path_hops",
			Help:    "Number of edges on found paths",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 20},
		},
		[]string{"algorithm"},
	)

	r.PathTotalCost = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qosbench_path_total_cost",
			Help:    "Weighted total cost of found paths",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"algorithm"},
	)
}
