// Package report aggregates result records into a per-algorithm comparison
// that can be rendered as a terminal table or written as YAML.
package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/qosroute/pkg/experiment"
	"github.com/dd0wney/qosroute/pkg/qos"
	"github.com/dd0wney/qosroute/pkg/results"
	"github.com/dd0wney/qosroute/pkg/routing"
)

// AlgorithmSummary compares one algorithm across every trial of a run.
type AlgorithmSummary struct {
	Algorithm           string  `yaml:"algorithm"`
	Records             int     `yaml:"records"`
	NoPath              int     `yaml:"no_path"`
	SuccessRate         float64 `yaml:"success_rate"`
	Wins                int     `yaml:"wins"`
	MeanTotalCost       float64 `yaml:"mean_total_cost"`
	StdDevTotalCost     float64 `yaml:"stddev_total_cost"`
	MinTotalCost        float64 `yaml:"min_total_cost"`
	MaxTotalCost        float64 `yaml:"max_total_cost"`
	MeanDelay           float64 `yaml:"mean_total_delay"`
	MeanReliabilityCost float64 `yaml:"mean_rel_cost"`
	MeanResourceCost    float64 `yaml:"mean_res_cost"`
	MeanPathLength      float64 `yaml:"mean_path_length"`
}

// Summary is the run-level report.
type Summary struct {
	RunID            string             `yaml:"run_id,omitempty"`
	Seed             uint64             `yaml:"seed"`
	GeneratedAt      time.Time          `yaml:"generated_at"`
	Duration         string             `yaml:"duration"`
	Weights          qos.Weights        `yaml:"weights"`
	ScenariosRun     int                `yaml:"scenarios_run"`
	ScenariosSkipped int                `yaml:"scenarios_skipped"`
	Trials           int                `yaml:"trials"`
	Records          int                `yaml:"records"`
	Algorithms       []AlgorithmSummary `yaml:"algorithms"`
}

type trialKey struct{ scenario, repeat int }

type samples struct {
	total, delay, rel, res []float64
	length                 []int
}

// Collector is a results.Sink that keeps what it needs for a Summary.
type Collector struct {
	mu     sync.Mutex
	byAlg  map[string]*samples
	trials map[trialKey]map[string]float64
	order  []trialKey
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{
		byAlg:  make(map[string]*samples),
		trials: make(map[trialKey]map[string]float64),
	}
}

// Write records one result.
func (c *Collector) Write(_ context.Context, r results.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.byAlg[r.Algorithm]
	if !ok {
		s = &samples{}
		c.byAlg[r.Algorithm] = s
	}
	s.total = append(s.total, r.Metrics.TotalCost)
	s.delay = append(s.delay, r.Metrics.TotalDelay)
	s.rel = append(s.rel, r.Metrics.ReliabilityCost)
	s.res = append(s.res, r.Metrics.ResourceCost)
	s.length = append(s.length, r.PathLength)

	key := trialKey{r.ScenarioID, r.RepeatID}
	costs, ok := c.trials[key]
	if !ok {
		costs = make(map[string]float64)
		c.trials[key] = costs
		c.order = append(c.order, key)
	}
	costs[r.Algorithm] = r.Metrics.TotalCost
	return nil
}

// Close implements results.Sink.
func (c *Collector) Close() error { return nil }

// wins counts, per algorithm, the trials where it found the cheapest path.
// Every algorithm tied at the minimum is credited.
func (c *Collector) wins() map[string]int {
	out := make(map[string]int)
	for _, key := range c.order {
		costs := c.trials[key]
		best := 0.0
		first := true
		for _, cost := range costs {
			if first || cost < best {
				best, first = cost, false
			}
		}
		for alg, cost := range costs {
			if cost == best {
				out[alg]++
			}
		}
	}
	return out
}

// Summarize combines the collected records with the run's stats.
func (c *Collector) Summarize(stats experiment.Stats) Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	sum := Summary{
		RunID:            stats.RunID,
		Seed:             stats.Seed,
		GeneratedAt:      time.Now().Truncate(time.Second),
		Duration:         stats.Duration.Round(time.Millisecond).String(),
		Weights:          stats.Weights,
		ScenariosRun:     stats.ScenariosRun,
		ScenariosSkipped: stats.ScenariosSkipped,
		Trials:           stats.Trials,
		Records:          stats.Records,
	}

	labels := make([]string, 0, len(c.byAlg)+len(stats.NoPath))
	for alg := range c.byAlg {
		labels = append(labels, alg)
	}
	for alg := range stats.NoPath {
		if _, ok := c.byAlg[alg]; !ok {
			labels = append(labels, alg)
		}
	}
	slices.SortFunc(labels, func(a, b string) int { return rank(a) - rank(b) })

	wins := c.wins()
	for _, alg := range labels {
		s := c.byAlg[alg]
		if s == nil {
			s = &samples{}
		}
		a := AlgorithmSummary{
			Algorithm:           alg,
			Records:             len(s.total),
			NoPath:              stats.NoPath[alg],
			Wins:                wins[alg],
			MeanTotalCost:       mean(s.total),
			StdDevTotalCost:     stddev(s.total),
			MeanDelay:           mean(s.delay),
			MeanReliabilityCost: mean(s.rel),
			MeanResourceCost:    mean(s.res),
			MeanPathLength:      mean(s.length),
		}
		a.MinTotalCost, a.MaxTotalCost = bounds(s.total)
		if attempts := a.Records + a.NoPath; attempts > 0 {
			a.SuccessRate = float64(a.Records) / float64(attempts)
		}
		sum.Algorithms = append(sum.Algorithms, a)
	}
	return sum
}

// rank orders known labels by algorithm and unknown ones after them.
func rank(label string) int {
	alg, err := routing.ParseAlgorithm(label)
	if err != nil {
		return len(routing.All())
	}
	return int(alg)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FFFF")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF00FF"))
)

// Render writes a comparison table for s.
func Render(w io.Writer, s Summary) error {
	rows := make([][]string, 0, len(s.Algorithms))
	for _, a := range s.Algorithms {
		rows = append(rows, []string{
			a.Algorithm,
			fmt.Sprintf("%d", a.Records),
			fmt.Sprintf("%d", a.NoPath),
			fmt.Sprintf("%.1f%%", 100*a.SuccessRate),
			fmt.Sprintf("%d", a.Wins),
			fmt.Sprintf("%.4f", a.MeanTotalCost),
			fmt.Sprintf("%.4f", a.StdDevTotalCost),
			fmt.Sprintf("%.3f", a.MeanDelay),
			fmt.Sprintf("%.4f", a.MeanReliabilityCost),
			fmt.Sprintf("%.3f", a.MeanResourceCost),
			fmt.Sprintf("%.2f", a.MeanPathLength),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("ALGORITHM", "RECORDS", "NO PATH", "SUCCESS", "WINS", "MEAN COST", "STDDEV", "DELAY", "REL COST", "RES COST", "PATH LEN").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	title := titleStyle.Render(fmt.Sprintf("QoS routing comparison: %d trials over %d scenarios (%d skipped), weights %s",
		s.Trials, s.ScenariosRun, s.ScenariosSkipped, s.Weights))
	_, err := fmt.Fprintf(w, "%s\n%s\n", title, t.Render())
	return err
}

// EncodeYAML writes s as YAML.
func EncodeYAML(w io.Writer, s Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return enc.Close()
}

// WriteYAML writes s to path.
func WriteYAML(path string, s Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}
	if err := EncodeYAML(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
