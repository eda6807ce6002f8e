package qos

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Defaults(t *testing.T) {
	w, err := DefaultRawWeights().Normalize()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, w.Delay, tolerance)
	assert.InDelta(t, 0.3, w.Reliability, tolerance)
	assert.InDelta(t, 0.2, w.Resource, tolerance)
}

func TestNormalize_Rejects(t *testing.T) {
	_, err := Weights{}.Normalize()
	assert.ErrorIs(t, err, ErrZeroWeights)

	_, err = Weights{Delay: -1, Reliability: 2}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidWeights)

	_, err = Weights{Delay: math.NaN()}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidWeights)

	_, err = Weights{Resource: math.Inf(1)}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestNormalize_Idempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("normalizing twice equals normalizing once", prop.ForAll(
		func(d, r, s float64) bool {
			once, err := Weights{Delay: d, Reliability: r, Resource: s}.Normalize()
			if err != nil {
				return d+r+s == 0
			}
			twice, err := once.Normalize()
			if err != nil {
				return false
			}
			return math.Abs(once.Delay-twice.Delay) < 1e-12 &&
				math.Abs(once.Reliability-twice.Reliability) < 1e-12 &&
				math.Abs(once.Resource-twice.Resource) < 1e-12 &&
				math.Abs(twice.Sum()-1) < 1e-12
		},
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 100),
	))

	properties.TestingRun(t)
}
