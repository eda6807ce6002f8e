package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RecordScenario records a generated network.
func (r *Registry) RecordScenario(nodes, edges int) {
	r.ScenariosTotal.Inc()
	r.NetworkNodes.Set(float64(nodes))
	r.NetworkEdges.Set(float64(edges))
}

// RecordSkippedScenario records a scenario whose network was unusable.
func (r *Registry) RecordSkippedScenario() {
	r.ScenariosSkippedTotal.Inc()
}

// RecordSearch records a route search. hops and cost are only observed when
// a path was found.
func (r *Registry) RecordSearch(algorithm string, found bool, duration time.Duration, hops int, cost float64) {
	r.SearchDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	if !found {
		r.TrialsTotal.WithLabelValues(algorithm, OutcomeNoPath).Inc()
		return
	}
	r.TrialsTotal.WithLabelValues(algorithm, OutcomeFound).Inc()
	r.PathHops.WithLabelValues(algorithm).Observe(float64(hops))
	r.PathTotalCost.WithLabelValues(algorithm).Observe(cost)
}

// RecordWrite records the outcome of handing a record to the sinks.
func (r *Registry) RecordWrite(algorithm string, err error) {
	if err != nil {
		r.SinkErrorsTotal.Inc()
		r.TrialsTotal.WithLabelValues(algorithm, OutcomeError).Inc()
		return
	}
	r.RecordsWrittenTotal.Inc()
}

// WriteTextfile writes every metric to path in the Prometheus text format,
// for pickup by the node exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
