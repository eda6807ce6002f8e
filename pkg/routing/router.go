// Package routing provides interchangeable QoS route searches: an exact
// weighted shortest-path baseline and two tabular reinforcement-learning
// searches (Q-Learning and SARSA).
//
// Every search honours the same contract: given a network, two endpoints and
// normalised weights it returns either a valid path or ok=false. It never
// returns a partial path.
package routing

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/dd0wney/qosroute/pkg/network"
	"github.com/dd0wney/qosroute/pkg/qos"
)

// Router finds a route between two nodes.
type Router interface {
	Algorithm() Algorithm
	Route(net *network.Network, source, target network.NodeID, w qos.Weights) (network.Path, bool)
}

// Algorithm enumerates the available searches.
type Algorithm int

const (
	AlgorithmDijkstra Algorithm = iota
	AlgorithmQLearning
	AlgorithmSARSA
)

// ErrUnknownAlgorithm is returned when a label names no search.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

var labels = [...]string{
	AlgorithmDijkstra:  "Dijkstra",
	AlgorithmQLearning: "Q-Learning",
	AlgorithmSARSA:     "SARSA",
}

// All lists every algorithm in reporting order.
func All() []Algorithm {
	return []Algorithm{AlgorithmDijkstra, AlgorithmQLearning, AlgorithmSARSA}
}

// String returns the label written to result records.
func (a Algorithm) String() string {
	if a < 0 || int(a) >= len(labels) {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
	return labels[a]
}

// ParseAlgorithm maps a label back to its Algorithm. Matching ignores case
// and accepts a few aliases.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dijkstra", "deterministic", "shortest-path":
		return AlgorithmDijkstra, nil
	case "q-learning", "qlearning", "q":
		return AlgorithmQLearning, nil
	case "sarsa":
		return AlgorithmSARSA, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrUnknownAlgorithm)
	}
}

// ParseAlgorithms parses a list of labels, rejecting duplicates.
func ParseAlgorithms(names []string) ([]Algorithm, error) {
	out := make([]Algorithm, 0, len(names))
	seen := make(map[Algorithm]bool, len(names))
	for _, name := range names {
		alg, err := ParseAlgorithm(name)
		if err != nil {
			return nil, err
		}
		if seen[alg] {
			return nil, fmt.Errorf("algorithm %s listed twice", alg)
		}
		seen[alg] = true
		out = append(out, alg)
	}
	return out, nil
}

// New builds the router for alg. The learning searches draw exploration from
// rng; rng may be nil for AlgorithmDijkstra.
func New(alg Algorithm, params LearningParams, rng *rand.Rand) (Router, error) {
	switch alg {
	case AlgorithmDijkstra:
		return NewDijkstra(), nil
	case AlgorithmQLearning:
		return NewQLearning(params, rng)
	case AlgorithmSARSA:
		return NewSARSA(params, rng)
	default:
		return nil, fmt.Errorf("%s: %w", alg, ErrUnknownAlgorithm)
	}
}

// trivial handles the endpoints every router checks before searching.
func trivial(net *network.Network, source, target network.NodeID) (path network.Path, ok, done bool) {
	if !net.HasNode(source) || !net.HasNode(target) {
		return nil, false, true
	}
	if source == target {
		return network.Path{source}, true, true
	}
	return nil, false, false
}
