// Package results defines the persisted experiment record and the sinks that
// store or publish records as the harness produces them.
package results

import (
	"context"
	"strconv"
	"time"

	"github.com/dd0wney/qosroute/pkg/network"
	"github.com/dd0wney/qosroute/pkg/qos"
)

// TimestampLayout is the local-time layout of the timestamp column.
const TimestampLayout = "2006-01-02T15:04:05"

// Header is the exact column order of persisted records.
var Header = []string{
	"timestamp",
	"scenario_id",
	"repeat_id",
	"algorithm",
	"n_nodes",
	"n_edges",
	"source",
	"target",
	"w_delay",
	"w_rel",
	"w_res",
	"path_length",
	"total_delay",
	"rel_cost",
	"res_cost",
	"total_cost",
}

// Record is one completed trial: a (scenario, repeat, algorithm) triple with
// its network size, the normalised weights and the path metrics. Records are
// passed by value and never modified once emitted.
type Record struct {
	RunID      string         `json:"run_id"`
	Timestamp  time.Time      `json:"timestamp"`
	ScenarioID int            `json:"scenario_id"`
	RepeatID   int            `json:"repeat_id"`
	Algorithm  string         `json:"algorithm"`
	Nodes      int            `json:"n_nodes"`
	Edges      int            `json:"n_edges"`
	Source     network.NodeID `json:"source"`
	Target     network.NodeID `json:"target"`
	Weights    qos.Weights    `json:"weights"`
	PathLength int            `json:"path_length"` // nodes on the path
	Metrics    qos.Metrics    `json:"metrics"`
}

// Row renders r in Header order.
func (r Record) Row() []string {
	return []string{
		r.Timestamp.Format(TimestampLayout),
		strconv.Itoa(r.ScenarioID),
		strconv.Itoa(r.RepeatID),
		r.Algorithm,
		strconv.Itoa(r.Nodes),
		strconv.Itoa(r.Edges),
		strconv.Itoa(int(r.Source)),
		strconv.Itoa(int(r.Target)),
		formatFloat(r.Weights.Delay),
		formatFloat(r.Weights.Reliability),
		formatFloat(r.Weights.Resource),
		strconv.Itoa(r.PathLength),
		formatFloat(r.Metrics.TotalDelay),
		formatFloat(r.Metrics.ReliabilityCost),
		formatFloat(r.Metrics.ResourceCost),
		formatFloat(r.Metrics.TotalCost),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Sink receives records one at a time. Implementations persist each record
// before Write returns so an interrupted run keeps every completed row.
type Sink interface {
	Write(ctx context.Context, r Record) error
	Close() error
}
