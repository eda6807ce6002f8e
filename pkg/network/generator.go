package network

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// Range is a closed interval attributes are sampled from uniformly.
type Range struct {
	Min float64 `yaml:"min" mapstructure:"min"`
	Max float64 `yaml:"max" mapstructure:"max"`
}

func (r Range) sample(rng *rand.Rand) float64 {
	return r.Min + (r.Max-r.Min)*rng.Float64()
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// AttributeRanges bounds every sampled QoS attribute.
type AttributeRanges struct {
	ProcessingDelay Range `yaml:"processing_delay" mapstructure:"processing_delay"`
	NodeReliability Range `yaml:"node_reliability" mapstructure:"node_reliability"`
	Bandwidth       Range `yaml:"bandwidth" mapstructure:"bandwidth"`
	LinkDelay       Range `yaml:"link_delay" mapstructure:"link_delay"`
	LinkReliability Range `yaml:"link_reliability" mapstructure:"link_reliability"`
}

// DefaultAttributeRanges returns the ranges used by the experiments.
func DefaultAttributeRanges() AttributeRanges {
	return AttributeRanges{
		ProcessingDelay: Range{Min: 0.5, Max: 2.0},
		NodeReliability: Range{Min: 0.95, Max: 0.999},
		Bandwidth:       Range{Min: 100, Max: 1000},
		LinkDelay:       Range{Min: 3, Max: 15},
		LinkReliability: Range{Min: 0.95, Max: 0.999},
	}
}

var ErrInvalidRanges = errors.New("invalid attribute ranges")

// Validate checks that every sampled value will satisfy the Network invariants.
func (a AttributeRanges) Validate() error {
	checks := []struct {
		name        string
		r           Range
		probability bool
	}{
		{"processing_delay", a.ProcessingDelay, false},
		{"node_reliability", a.NodeReliability, true},
		{"bandwidth", a.Bandwidth, false},
		{"link_delay", a.LinkDelay, false},
		{"link_reliability", a.LinkReliability, true},
	}
	for _, c := range checks {
		if !(c.r.Min > 0) || c.r.Max < c.r.Min || (c.probability && c.r.Max > 1) {
			return fmt.Errorf("%s [%v, %v]: %w", c.name, c.r.Min, c.r.Max, ErrInvalidRanges)
		}
	}
	return nil
}

var ErrInvalidParameters = errors.New("invalid generator parameters")

// Generate samples a G(n,p) random graph, keeps its largest connected
// component and annotates it with attributes from DefaultAttributeRanges.
// The result may hold fewer than nodeCount nodes; callers must check Usable.
func Generate(rng *rand.Rand, nodeCount int, edgeProbability float64) (*Network, error) {
	return GenerateWithRanges(rng, nodeCount, edgeProbability, DefaultAttributeRanges())
}

// GenerateWithRanges is Generate with explicit attribute ranges.
func GenerateWithRanges(rng *rand.Rand, nodeCount int, edgeProbability float64, ranges AttributeRanges) (*Network, error) {
	if nodeCount < 0 {
		return nil, fmt.Errorf("node count %d: %w", nodeCount, ErrInvalidParameters)
	}
	if !(edgeProbability >= 0 && edgeProbability <= 1) {
		return nil, fmt.Errorf("edge probability %v: %w", edgeProbability, ErrInvalidParameters)
	}
	if err := ranges.Validate(); err != nil {
		return nil, err
	}

	// Topology first, over dense IDs 0..n-1.
	adj := make([][]NodeID, nodeCount)
	type pair struct{ u, v NodeID }
	sampled := make([]pair, 0)
	for i := 0; i < nodeCount; i++ {
		for j := i + 1; j < nodeCount; j++ {
			if rng.Float64() < edgeProbability {
				u, v := NodeID(i), NodeID(j)
				adj[i] = append(adj[i], v)
				adj[j] = append(adj[j], u)
				sampled = append(sampled, pair{u, v})
			}
		}
	}

	ids := make([]NodeID, nodeCount)
	for i := range ids {
		ids[i] = NodeID(i)
	}
	largest := LargestComponent(components(ids, func(id NodeID) []NodeID { return adj[id] }))

	keep := make([]bool, nodeCount)
	for _, id := range largest.Nodes {
		keep[id] = true
	}

	// Attributes: nodes in ascending ID order, then edges in sampling order.
	b := NewBuilder()
	for _, id := range ids {
		if !keep[id] {
			continue
		}
		b.AddNode(id, ranges.ProcessingDelay.sample(rng), ranges.NodeReliability.sample(rng))
	}
	for _, p := range sampled {
		if !keep[p.u] {
			continue
		}
		b.AddEdge(p.u, p.v,
			ranges.Bandwidth.sample(rng),
			ranges.LinkDelay.sample(rng),
			ranges.LinkReliability.sample(rng),
		)
	}
	return b.Build()
}
