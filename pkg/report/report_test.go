package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/qosroute/pkg/experiment"
	"github.com/dd0wney/qosroute/pkg/qos"
	"github.com/dd0wney/qosroute/pkg/results"
)

func record(scenario, repeat int, alg string, cost float64, length int) results.Record {
	return results.Record{
		ScenarioID: scenario,
		RepeatID:   repeat,
		Algorithm:  alg,
		PathLength: length,
		Metrics:    qos.Metrics{TotalDelay: 10 * cost, ReliabilityCost: cost / 10, ResourceCost: cost, TotalCost: cost},
	}
}

func collect(t *testing.T) (*Collector, experiment.Stats) {
	t.Helper()
	c := NewCollector()
	ctx := context.Background()
	for _, r := range []results.Record{
		record(1, 1, "Dijkstra", 2, 3),
		record(1, 1, "Q-Learning", 3, 4),
		record(1, 1, "SARSA", 2, 3),
		record(1, 2, "Dijkstra", 4, 2),
		record(1, 2, "SARSA", 6, 5),
	} {
		require.NoError(t, c.Write(ctx, r))
	}
	require.NoError(t, c.Close())

	stats := experiment.Stats{
		RunID:        "run-9",
		Seed:         42,
		Weights:      qos.Weights{Delay: 0.5, Reliability: 0.3, Resource: 0.2},
		ScenariosRun: 1,
		Trials:       6,
		Records:      5,
		NoPath:       map[string]int{"Q-Learning": 1},
		Duration:     1500 * time.Millisecond,
	}
	return c, stats
}

func TestSummarize(t *testing.T) {
	c, stats := collect(t)
	s := c.Summarize(stats)

	assert.Equal(t, "run-9", s.RunID)
	assert.Equal(t, uint64(42), s.Seed)
	assert.Equal(t, "1.5s", s.Duration)
	require.Len(t, s.Algorithms, 3)

	dij, ql, sarsa := s.Algorithms[0], s.Algorithms[1], s.Algorithms[2]
	assert.Equal(t, "Dijkstra", dij.Algorithm)
	assert.Equal(t, "Q-Learning", ql.Algorithm)
	assert.Equal(t, "SARSA", sarsa.Algorithm)

	assert.Equal(t, 2, dij.Records)
	assert.InDelta(t, 3.0, dij.MeanTotalCost, 1e-12)
	assert.InDelta(t, 1.0, dij.StdDevTotalCost, 1e-12)
	assert.Equal(t, 2.0, dij.MinTotalCost)
	assert.Equal(t, 4.0, dij.MaxTotalCost)
	assert.InDelta(t, 2.5, dij.MeanPathLength, 1e-12)
	assert.InDelta(t, 30.0, dij.MeanDelay, 1e-12)
	assert.Equal(t, 1.0, dij.SuccessRate)

	assert.Equal(t, 1, ql.Records)
	assert.Equal(t, 1, ql.NoPath)
	assert.Equal(t, 0.5, ql.SuccessRate)

	// Ties credit every algorithm at the minimum.
	assert.Equal(t, 2, dij.Wins)
	assert.Equal(t, 1, sarsa.Wins)
	assert.Equal(t, 0, ql.Wins)
}

func TestSummarize_NoPathOnly(t *testing.T) {
	s := NewCollector().Summarize(experiment.Stats{NoPath: map[string]int{"SARSA": 3}})
	require.Len(t, s.Algorithms, 1)
	assert.Equal(t, "SARSA", s.Algorithms[0].Algorithm)
	assert.Equal(t, 0, s.Algorithms[0].Records)
	assert.Equal(t, 0.0, s.Algorithms[0].SuccessRate)
	assert.Equal(t, 0.0, s.Algorithms[0].MeanTotalCost)
}

func TestRender(t *testing.T) {
	c, stats := collect(t)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, c.Summarize(stats)))

	out := buf.String()
	for _, want := range []string{"ALGORITHM", "Dijkstra", "Q-Learning", "SARSA", "50.0%", "3.0000"} {
		assert.Contains(t, out, want)
	}
}

func TestWriteYAML(t *testing.T) {
	c, stats := collect(t)
	path := filepath.Join(t.TempDir(), "summary.yaml")
	require.NoError(t, WriteYAML(path, c.Summarize(stats)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, "run-9", got["run_id"])
	assert.Equal(t, 5, got["records"])

	algs, ok := got["algorithms"].([]any)
	require.True(t, ok)
	require.Len(t, algs, 3)
	first := algs[0].(map[string]any)
	assert.Equal(t, "Dijkstra", first["algorithm"])
	assert.Equal(t, 2, first["wins"])

	weights := got["weights"].(map[string]any)
	assert.Equal(t, 0.5, weights["delay"])
}

func TestWriteYAML_BadPath(t *testing.T) {
	err := WriteYAML(filepath.Join(t.TempDir(), "missing", "s.yaml"), Summary{})
	assert.Error(t, err)
}

func TestStatsHelpers(t *testing.T) {
	assert.Equal(t, 0.0, mean([]float64{}))
	assert.Equal(t, 2.0, mean([]int{1, 2, 3}))
	lo, hi := bounds([]float64{3, -1, 7})
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 7.0, hi)
	assert.Equal(t, 0.0, stddev([]float64{5}))
	assert.InDelta(t, 2.0, stddev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
}
