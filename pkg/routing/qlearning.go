package routing

import (
	"math/rand/v2"

	"github.com/dd0wney/qosroute/pkg/network"
	"github.com/dd0wney/qosroute/pkg/qos"
)

// QLearningRouter trains an off-policy action-value table per query and
// extracts the greedy route. It may fail to find a path that exists.
type QLearningRouter struct {
	learner
}

// NewQLearning creates a Q-Learning router drawing exploration from rng.
func NewQLearning(params LearningParams, rng *rand.Rand) (*QLearningRouter, error) {
	l, err := newLearner(params, OffPolicy, rng)
	if err != nil {
		return nil, err
	}
	return &QLearningRouter{learner: l}, nil
}

func (*QLearningRouter) Algorithm() Algorithm { return AlgorithmQLearning }

func (r *QLearningRouter) Route(net *network.Network, source, target network.NodeID, w qos.Weights) (network.Path, bool) {
	return r.route(net, source, target, w)
}
