package routing

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/qosroute/pkg/network"
	"github.com/dd0wney/qosroute/pkg/qos"
)

var validate = validator.New()

// LearningParams are the hyperparameters shared by the learning searches.
type LearningParams struct {
	Episodes     int     `yaml:"episodes" mapstructure:"episodes" validate:"gte=1"`
	MaxSteps     int     `yaml:"max_steps" mapstructure:"max_steps" validate:"gte=1"`
	Alpha        float64 `yaml:"alpha" mapstructure:"alpha" validate:"gt=0,lte=1"`
	Gamma        float64 `yaml:"gamma" mapstructure:"gamma" validate:"gte=0,lte=1"`
	EpsilonStart float64 `yaml:"epsilon_start" mapstructure:"epsilon_start" validate:"gte=0,lte=1"`
	EpsilonEnd   float64 `yaml:"epsilon_end" mapstructure:"epsilon_end" validate:"gte=0,lte=1"`
}

// DefaultLearningParams returns the settings used by the experiments.
func DefaultLearningParams() LearningParams {
	return LearningParams{
		Episodes:     200,
		MaxSteps:     200,
		Alpha:        0.6,
		Gamma:        0.9,
		EpsilonStart: 1.0,
		EpsilonEnd:   0.05,
	}
}

// ErrInvalidParams wraps hyperparameter validation failures.
var ErrInvalidParams = errors.New("invalid learning parameters")

// Validate checks every hyperparameter against its documented range.
func (p LearningParams) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidParams, strings.Join(msgs, "; "))
}

// Epsilon returns the exploration rate for episode k, decaying linearly from
// EpsilonStart at the first episode to EpsilonEnd at the last.
func (p LearningParams) Epsilon(k int) float64 {
	if p.Episodes <= 1 {
		return p.EpsilonStart
	}
	frac := float64(k) / float64(p.Episodes-1)
	return p.EpsilonStart + (p.EpsilonEnd-p.EpsilonStart)*frac
}

// Update selects the bootstrap target of the temporal-difference update.
type Update int

const (
	// OffPolicy bootstraps from the best next action (Q-Learning).
	OffPolicy Update = iota
	// OnPolicy bootstraps from the next action actually taken (SARSA).
	OnPolicy
)

type stateAction struct {
	state, action network.NodeID
}

// QTable holds action values. Unvisited pairs are worth 0.
type QTable struct {
	values map[stateAction]float64
}

// NewQTable creates an empty table.
func NewQTable() *QTable {
	return &QTable{values: make(map[stateAction]float64)}
}

// Value returns Q(state, action).
func (q *QTable) Value(state, action network.NodeID) float64 {
	return q.values[stateAction{state, action}]
}

// Set overwrites Q(state, action).
func (q *QTable) Set(state, action network.NodeID, v float64) {
	q.values[stateAction{state, action}] = v
}

// Len returns the number of pairs that have been updated.
func (q *QTable) Len() int { return len(q.values) }

// Best returns the highest-valued neighbour of state; ties go to the first
// neighbour in adjacency order. ok is false for a node without neighbours.
func (q *QTable) Best(net *network.Network, state network.NodeID) (action network.NodeID, value float64, ok bool) {
	for _, a := range net.Neighbors(state) {
		v := q.Value(state, a)
		if !ok || v > value {
			action, value, ok = a, v, true
		}
	}
	return action, value, ok
}

func (q *QTable) epsilonGreedy(net *network.Network, state network.NodeID, epsilon float64, rng *rand.Rand) (network.NodeID, bool) {
	if rng.Float64() < epsilon {
		nbrs := net.Neighbors(state)
		if len(nbrs) == 0 {
			return 0, false
		}
		return nbrs[rng.IntN(len(nbrs))], true
	}
	a, _, ok := q.Best(net, state)
	return a, ok
}

// Train learns action values for reaching target from source. Each episode
// starts at source and ends on reaching target or after MaxSteps moves. The
// reward for moving u→v is -qos.EdgeCost(u, v).
func Train(net *network.Network, source, target network.NodeID, w qos.Weights, p LearningParams, rule Update, rng *rand.Rand) *QTable {
	q := NewQTable()

	for episode := 0; episode < p.Episodes; episode++ {
		epsilon := p.Epsilon(episode)

		state := source
		action, ok := q.epsilonGreedy(net, state, epsilon, rng)
		if !ok {
			continue
		}

		for step := 0; step < p.MaxSteps; step++ {
			next := action
			reward := -qos.EdgeCost(net, state, next, w)

			var nextAction network.NodeID
			hasNext := false
			tdTarget := reward
			if next != target {
				switch rule {
				case OnPolicy:
					nextAction, hasNext = q.epsilonGreedy(net, next, epsilon, rng)
					if hasNext {
						tdTarget += p.Gamma * q.Value(next, nextAction)
					}
				default:
					if _, best, ok := q.Best(net, next); ok {
						tdTarget += p.Gamma * best
					}
				}
			}

			old := q.Value(state, action)
			q.Set(state, action, old+p.Alpha*(tdTarget-old))

			if next == target {
				break
			}
			state = next
			if rule != OnPolicy {
				nextAction, hasNext = q.epsilonGreedy(net, state, epsilon, rng)
			}
			if !hasNext {
				break
			}
			action = nextAction
		}
	}

	return q
}

// Rollout follows the greedy policy of q from source for at most maxSteps
// hops. It fails when it revisits a node, reaches a dead end or runs out of
// hops before target.
func Rollout(net *network.Network, q *QTable, source, target network.NodeID, maxSteps int) (network.Path, bool) {
	if source == target {
		return network.Path{source}, true
	}

	path := network.Path{source}
	visited := map[network.NodeID]bool{source: true}
	current := source
	for hop := 0; hop < maxSteps; hop++ {
		next, _, ok := q.Best(net, current)
		if !ok || visited[next] {
			return nil, false
		}
		path = append(path, next)
		if next == target {
			return path, true
		}
		visited[next] = true
		current = next
	}
	return nil, false
}

// learner is the shared body of the two learning routers.
type learner struct {
	params LearningParams
	rule   Update
	rng    *rand.Rand
}

func newLearner(params LearningParams, rule Update, rng *rand.Rand) (learner, error) {
	if err := params.Validate(); err != nil {
		return learner{}, err
	}
	if rng == nil {
		return learner{}, errors.New("learning router requires a random source")
	}
	return learner{params: params, rule: rule, rng: rng}, nil
}

func (l learner) route(net *network.Network, source, target network.NodeID, w qos.Weights) (network.Path, bool) {
	if path, ok, done := trivial(net, source, target); done {
		return path, ok
	}
	q := Train(net, source, target, w, l.params, l.rule, l.rng)
	return Rollout(net, q, source, target, l.params.MaxSteps)
}
