package routing

import (
	"math/rand/v2"

	"github.com/dd0wney/qosroute/pkg/network"
	"github.com/dd0wney/qosroute/pkg/qos"
)

// SARSARouter is the on-policy counterpart of QLearningRouter.
type SARSARouter struct {
	learner
}

// NewSARSA creates a SARSA router drawing exploration from rng.
func NewSARSA(params LearningParams, rng *rand.Rand) (*SARSARouter, error) {
	l, err := newLearner(params, OnPolicy, rng)
	if err != nil {
		return nil, err
	}
	return &SARSARouter{learner: l}, nil
}

func (*SARSARouter) Algorithm() Algorithm { return AlgorithmSARSA }

func (r *SARSARouter) Route(net *network.Network, source, target network.NodeID, w qos.Weights) (network.Path, bool) {
	return r.route(net, source, target, w)
}
