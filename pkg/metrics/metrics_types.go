package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Trial outcomes used as the "outcome" label.
const (
	OutcomeFound  = "found"
	OutcomeNoPath = "no_path"
	OutcomeError  = "error"
)

// Registry holds all metrics for an experiment run
type Registry struct {
	// Experiment Metrics
	ScenariosTotal        prometheus.Counter
	ScenariosSkippedTotal prometheus.Counter
	TrialsTotal           *prometheus.CounterVec
	NetworkNodes          prometheus.Gauge
	NetworkEdges          prometheus.Gauge

	// Routing Metrics
	SearchDuration *prometheus.HistogramVec
	PathHops       *prometheus.HistogramVec
	PathTotalCost  *prometheus.HistogramVec

	// Output Metrics
	RecordsWrittenTotal prometheus.Counter
	SinkErrorsTotal     prometheus.Counter

	registry *prometheus.Registry
	mu       sync.RWMutex
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initExperimentMetrics()
	r.initRoutingMetrics()
	r.initOutputMetrics()

	return r
}
