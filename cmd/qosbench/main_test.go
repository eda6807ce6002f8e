package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/qosroute/pkg/results"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "qosbench dev\n", out)
}

func TestRun_WritesOutputs(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "results.csv")
	summary := filepath.Join(dir, "summary.yaml")
	promFile := filepath.Join(dir, "qosbench.prom")

	out, stderr, err := execute(t, "run",
		"--scenarios=2", "--repeats=2", "--nodes=10", "--p=0.7",
		"--algorithms=dijkstra", "--seed=11",
		"--output="+csvPath,
		"--summary-file="+summary,
		"--metrics-file="+promFile,
		"--log-level=info",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Dijkstra")
	assert.Contains(t, stderr, `"operation":"run"`)

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, results.Header, rows[0])
	for _, row := range rows[1:] {
		assert.Equal(t, "Dijkstra", row[3])
	}

	data, err := os.ReadFile(summary)
	require.NoError(t, err)
	assert.Contains(t, string(data), "algorithm: Dijkstra")
	assert.Contains(t, string(data), "seed: 11")

	prom, err := os.ReadFile(promFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "qosbench_scenarios_total")
}

func TestRun_InvalidConfig(t *testing.T) {
	_, _, err := execute(t, "run", "--w-delay=0", "--w-rel=0", "--w-res=0",
		"--output="+filepath.Join(t.TempDir(), "x.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to zero")
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "from-file.csv")
	cfgPath := filepath.Join(dir, "qosbench.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(strings.Join([]string{
		"scenarios: 1",
		"repeats: 1",
		"nodes: 6",
		"edge_probability: 1",
		"algorithms: [Dijkstra]",
		"outputs: [" + csvPath + "]",
		"log: {level: error}",
	}, "\n")), 0o644))

	_, _, err := execute(t, "run", "--config", cfgPath)
	require.NoError(t, err)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestRoute(t *testing.T) {
	out, _, err := execute(t, "route",
		"--nodes=8", "--p=1", "--source=0", "--target=5", "--seed=3",
		"--episodes=40", "--log-level=error")
	require.NoError(t, err)
	assert.Contains(t, out, "source=0 target=5")
	for _, label := range []string{"Dijkstra", "Q-Learning", "SARSA"} {
		assert.Contains(t, out, label)
	}
}

func TestRoute_UnknownEndpoint(t *testing.T) {
	_, _, err := execute(t, "route", "--nodes=5", "--p=1", "--source=99", "--log-level=error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source node 99")
}

func TestRoute_SameEndpoint(t *testing.T) {
	out, stderr, err := execute(t, "route",
		"--nodes=8", "--p=1", "--source=2", "--target=2", "--seed=3",
		"--w-res=0", "--algorithms=dijkstra", "--log-level=info")
	require.NoError(t, err)
	assert.Contains(t, out, "source=2 target=2")
	assert.NotContains(t, out, "NaN")

	assert.Contains(t, stderr, `"operation":"route"`)
	assert.Contains(t, stderr, `"source_degree":7`)
	assert.Contains(t, stderr, `"target_degree":7`)
}
