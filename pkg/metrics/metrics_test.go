package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if r.TrialsTotal == nil {
		t.Error("TrialsTotal not initialized")
	}
	if r.SearchDuration == nil {
		t.Error("SearchDuration not initialized")
	}
	if r.RecordsWrittenTotal == nil {
		t.Error("RecordsWrittenTotal not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestRecordScenario(t *testing.T) {
	r := NewRegistry()

	r.RecordScenario(250, 12000)
	r.RecordScenario(240, 11000)
	r.RecordSkippedScenario()

	if got := testutil.ToFloat64(r.ScenariosTotal); got != 2 {
		t.Errorf("ScenariosTotal = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.NetworkNodes); got != 240 {
		t.Errorf("NetworkNodes = %v, want 240", got)
	}
	if got := testutil.ToFloat64(r.ScenariosSkippedTotal); got != 1 {
		t.Errorf("ScenariosSkippedTotal = %v, want 1", got)
	}
}

func TestRecordSearch(t *testing.T) {
	r := NewRegistry()

	r.RecordSearch("Dijkstra", true, 2*time.Millisecond, 3, 4.5)
	r.RecordSearch("Dijkstra", true, 3*time.Millisecond, 2, 3.0)
	r.RecordSearch("SARSA", false, 40*time.Millisecond, 0, 0)

	counter, err := r.TrialsTotal.GetMetricWithLabelValues("Dijkstra", OutcomeFound)
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2 {
		t.Errorf("found trials = %v, want 2", metric.Counter.GetValue())
	}

	if got := testutil.ToFloat64(r.TrialsTotal.WithLabelValues("SARSA", OutcomeNoPath)); got != 1 {
		t.Errorf("no_path trials = %v, want 1", got)
	}

	// Paths that were not found are not observed as hops.
	if n := testutil.CollectAndCount(r.PathHops); n != 1 {
		t.Errorf("PathHops series = %d, want 1", n)
	}

	hist, err := r.PathHops.GetMetricWithLabelValues("Dijkstra")
	if err != nil {
		t.Fatalf("Failed to get histogram: %v", err)
	}
	var hm dto.Metric
	if err := hist.(prometheus.Metric).Write(&hm); err != nil {
		t.Fatalf("Failed to write histogram: %v", err)
	}
	if hm.Histogram.GetSampleCount() != 2 || hm.Histogram.GetSampleSum() != 5 {
		t.Errorf("PathHops count=%d sum=%v", hm.Histogram.GetSampleCount(), hm.Histogram.GetSampleSum())
	}
}

func TestRecordWrite(t *testing.T) {
	r := NewRegistry()

	r.RecordWrite("Q-Learning", nil)
	r.RecordWrite("Q-Learning", errors.New("disk full"))

	if got := testutil.ToFloat64(r.RecordsWrittenTotal); got != 1 {
		t.Errorf("RecordsWrittenTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.SinkErrorsTotal); got != 1 {
		t.Errorf("SinkErrorsTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.TrialsTotal.WithLabelValues("Q-Learning", OutcomeError)); got != 1 {
		t.Errorf("error trials = %v, want 1", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.RecordScenario(10, 20)
	r.RecordSearch("Dijkstra", true, time.Millisecond, 2, 1.5)

	path := filepath.Join(t.TempDir(), "qosbench.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	out := string(data)
	for _, want := range []string{
		"qosbench_scenarios_total 1",
		"qosbench_network_edges 20",
		`qosbench_trials_total{algorithm="Dijkstra",outcome="found"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}

func TestWriteTextfile_BadPath(t *testing.T) {
	r := NewRegistry()
	if err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")); err == nil {
		t.Error("expected error for missing directory")
	}
}
