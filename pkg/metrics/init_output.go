package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initOutputMetrics() {
	r.RecordsWrittenTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "qosbench_records_written_total",
			Help: "Total number of result records accepted by the output sinks",
		},
	)

	r.SinkErrorsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "qosbench_sink_errors_total",
			Help: "Total number of result records the output sinks rejected",
		},
	)
}
