package qos

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrZeroWeights is returned when the raw weights sum to zero.
	ErrZeroWeights = errors.New("weights sum to zero")
	// ErrInvalidWeights is returned for negative or non-finite weights.
	ErrInvalidWeights = errors.New("weights must be finite and non-negative")
)

// Weights balances delay, reliability and resource cost.
type Weights struct {
	Delay       float64 `json:"w_delay" yaml:"delay" mapstructure:"delay"`
	Reliability float64 `json:"w_rel" yaml:"reliability" mapstructure:"reliability"`
	Resource    float64 `json:"w_res" yaml:"resource" mapstructure:"resource"`
}

// DefaultRawWeights are the unnormalised 5/3/2 weights.
func DefaultRawWeights() Weights {
	return Weights{Delay: 5, Reliability: 3, Resource: 2}
}

// Sum returns the sum of the three components.
func (w Weights) Sum() float64 {
	return w.Delay + w.Reliability + w.Resource
}

// Normalize scales w so its components sum to 1.
func (w Weights) Normalize() (Weights, error) {
	for _, v := range []float64{w.Delay, w.Reliability, w.Resource} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return Weights{}, fmt.Errorf("%+v: %w", w, ErrInvalidWeights)
		}
	}
	sum := w.Sum()
	if sum == 0 {
		return Weights{}, fmt.Errorf("%+v: %w", w, ErrZeroWeights)
	}
	return Weights{
		Delay:       w.Delay / sum,
		Reliability: w.Reliability / sum,
		Resource:    w.Resource / sum,
	}, nil
}

// String renders the weights with two decimals.
func (w Weights) String() string {
	return fmt.Sprintf("delay=%.2f rel=%.2f res=%.2f", w.Delay, w.Reliability, w.Resource)
}
