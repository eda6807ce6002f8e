// Package qos converts network attributes along a path into comparable
// delay, reliability and resource costs and folds them into one scalar.
//
// The path-level functions here are the yardstick every route search is
// judged by. EdgeCost is the per-edge formulation the searches optimise; it
// charges node reliability on both ends of every edge, so interior nodes are
// counted twice compared with ReliabilityCost.
package qos

import (
	"math"

	"github.com/dd0wney/qosroute/pkg/network"
)

// DefaultMaxBandwidth is the reference bandwidth for resource cost.
const DefaultMaxBandwidth = 1000.0

// Metrics is the evaluation of one path.
type Metrics struct {
	TotalDelay      float64 `json:"total_delay" yaml:"total_delay"`
	ReliabilityCost float64 `json:"rel_cost" yaml:"rel_cost"`
	ResourceCost    float64 `json:"res_cost" yaml:"res_cost"`
	TotalCost       float64 `json:"total_cost" yaml:"total_cost"`
}

// TotalDelay sums link delays along the path plus the processing delay of
// interior nodes. Paths shorter than two nodes cost nothing.
func TotalDelay(net *network.Network, path network.Path) float64 {
	if len(path) < 2 {
		return 0
	}

	var links float64
	for i := 0; i < len(path)-1; i++ {
		e, ok := net.Edge(path[i], path[i+1])
		if !ok {
			return math.Inf(1)
		}
		links += e.Delay
	}

	var processing float64
	for _, id := range path[1 : len(path)-1] {
		node, ok := net.Node(id)
		if !ok {
			return math.Inf(1)
		}
		processing += node.ProcessingDelay
	}
	return links + processing
}

// ReliabilityCost is the negative log of the probability that every link and
// every node on the path, endpoints included, survives.
func ReliabilityCost(net *network.Network, path network.Path) float64 {
	if len(path) == 0 {
		return math.Inf(1)
	}

	var cost float64
	for i := 0; i < len(path)-1; i++ {
		e, ok := net.Edge(path[i], path[i+1])
		if !ok {
			return math.Inf(1)
		}
		cost += -math.Log(e.Reliability)
	}
	for _, id := range path {
		node, ok := net.Node(id)
		if !ok {
			return math.Inf(1)
		}
		cost += -math.Log(node.Reliability)
	}
	return cost
}

// ResourceCost sums maxBandwidth/bandwidth over the path's links. It is a
// cumulative pressure score, not a bottleneck check.
func ResourceCost(net *network.Network, path network.Path, maxBandwidth float64) float64 {
	if len(path) < 2 {
		return math.Inf(1)
	}

	var cost float64
	for i := 0; i < len(path)-1; i++ {
		e, ok := net.Edge(path[i], path[i+1])
		if !ok {
			return math.Inf(1)
		}
		cost += maxBandwidth / e.Bandwidth
	}
	return cost
}

// TotalCost is the weighted sum of the three cost components. A component
// with zero weight contributes nothing, even when it is infinite, so the
// single-node path [s] keeps a finite total unless its resource cost counts.
func TotalCost(delay, reliabilityCost, resourceCost float64, w Weights) float64 {
	var total float64
	for _, term := range [...]struct{ weight, cost float64 }{
		{w.Delay, delay},
		{w.Reliability, reliabilityCost},
		{w.Resource, resourceCost},
	} {
		if term.weight == 0 {
			continue
		}
		total += term.weight * term.cost
	}
	return total
}

// Evaluate computes every metric of path with the default max bandwidth.
func Evaluate(net *network.Network, path network.Path, w Weights) Metrics {
	return EvaluateWithBandwidth(net, path, w, DefaultMaxBandwidth)
}

// EvaluateWithBandwidth is Evaluate with an explicit reference bandwidth.
func EvaluateWithBandwidth(net *network.Network, path network.Path, w Weights, maxBandwidth float64) Metrics {
	m := Metrics{
		TotalDelay:      TotalDelay(net, path),
		ReliabilityCost: ReliabilityCost(net, path),
		ResourceCost:    ResourceCost(net, path, maxBandwidth),
	}
	m.TotalCost = TotalCost(m.TotalDelay, m.ReliabilityCost, m.ResourceCost, w)
	return m
}

// EdgeCost is the weighted cost of traversing u→v as seen by the searches:
// link delay plus v's processing delay, the reliability of the link and of
// both endpoints, and the link's inverse bandwidth. It returns +Inf when u
// and v are not adjacent.
func EdgeCost(net *network.Network, u, v network.NodeID, w Weights) float64 {
	e, ok := net.Edge(u, v)
	if !ok {
		return math.Inf(1)
	}
	from, _ := net.Node(u)
	to, _ := net.Node(v)

	delay := e.Delay + to.ProcessingDelay
	rel := -math.Log(e.Reliability) - math.Log(from.Reliability) - math.Log(to.Reliability)
	res := DefaultMaxBandwidth / e.Bandwidth
	return TotalCost(delay, rel, res, w)
}
