// Package experiment runs batch comparisons of route searches over randomly
// generated networks and streams one result record per successful trial.
package experiment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dd0wney/qosroute/pkg/logging"
	"github.com/dd0wney/qosroute/pkg/metrics"
	"github.com/dd0wney/qosroute/pkg/network"
	"github.com/dd0wney/qosroute/pkg/qos"
	"github.com/dd0wney/qosroute/pkg/results"
	"github.com/dd0wney/qosroute/pkg/routing"
)

// Config describes one experiment run.
type Config struct {
	Scenarios       int
	Repeats         int
	Nodes           int
	EdgeProbability float64

	// Weights are raw; they are normalised once before the first trial.
	Weights    qos.Weights
	Algorithms []routing.Algorithm
	Learning   routing.LearningParams

	// Ranges defaults to network.DefaultAttributeRanges when zero.
	Ranges       network.AttributeRanges
	MaxBandwidth float64

	// Seed fixes the random stream. Zero draws a seed from OS entropy; the
	// seed actually used is reported in Stats.
	Seed  uint64
	RunID string

	Logger  logging.Logger
	Metrics *metrics.Registry
	Now     func() time.Time
}

// DefaultConfig returns the reference batch: 20 scenarios of 5 repeats on
// 250-node G(n, 0.4) networks with raw weights 5/3/2 and every algorithm.
func DefaultConfig() Config {
	return Config{
		Scenarios:       20,
		Repeats:         5,
		Nodes:           250,
		EdgeProbability: 0.4,
		Weights:         qos.DefaultRawWeights(),
		Algorithms:      routing.All(),
		Learning:        routing.DefaultLearningParams(),
		Ranges:          network.DefaultAttributeRanges(),
		MaxBandwidth:    qos.DefaultMaxBandwidth,
	}
}

// Stats summarises a run. Counters cover the trials completed before Run
// returned, including on error.
type Stats struct {
	RunID            string
	Seed             uint64
	Weights          qos.Weights
	ScenariosRun     int
	ScenariosSkipped int
	Trials           int
	Records          int
	NoPath           map[string]int
	Duration         time.Duration
}

// Harness executes a Config. It is single-threaded and not safe for
// concurrent Run calls.
type Harness struct {
	cfg     Config
	weights qos.Weights
	rng     *rand.Rand
	seed    uint64
	routers []routing.Router
	log     logging.Logger
	metrics *metrics.Registry
	now     func() time.Time
}

// New validates cfg and prepares the routers.
func New(cfg Config) (*Harness, error) {
	if cfg.Scenarios < 0 || cfg.Repeats < 0 || cfg.Nodes < 0 {
		return nil, fmt.Errorf("%w: scenarios, repeats and nodes must be non-negative", ErrInvalidConfig)
	}
	if !(cfg.EdgeProbability >= 0 && cfg.EdgeProbability <= 1) {
		return nil, fmt.Errorf("%w: edge probability %v outside [0,1]", ErrInvalidConfig, cfg.EdgeProbability)
	}
	weights, err := cfg.Weights.Normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if cfg.Ranges == (network.AttributeRanges{}) {
		cfg.Ranges = network.DefaultAttributeRanges()
	}
	if err := cfg.Ranges.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if cfg.MaxBandwidth == 0 {
		cfg.MaxBandwidth = qos.DefaultMaxBandwidth
	}
	if !(cfg.MaxBandwidth > 0) {
		return nil, fmt.Errorf("%w: max bandwidth must be positive", ErrInvalidConfig)
	}
	if len(cfg.Algorithms) == 0 {
		cfg.Algorithms = routing.All()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	h := &Harness{
		cfg:     cfg,
		weights: weights,
		rng:     rng,
		seed:    seed,
		log:     cfg.Logger,
		metrics: cfg.Metrics,
		now:     cfg.Now,
	}
	if h.log == nil {
		h.log = logging.NewNopLogger()
	}
	if h.metrics == nil {
		h.metrics = metrics.NewRegistry()
	}
	if h.now == nil {
		h.now = time.Now
	}

	seen := make(map[routing.Algorithm]bool, len(cfg.Algorithms))
	for _, alg := range cfg.Algorithms {
		if seen[alg] {
			return nil, fmt.Errorf("%w: algorithm %s listed twice", ErrInvalidConfig, alg)
		}
		seen[alg] = true
		r, err := routing.New(alg, cfg.Learning, rng)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		h.routers = append(h.routers, r)
	}
	return h, nil
}

// Weights returns the normalised weights every trial uses.
func (h *Harness) Weights() qos.Weights { return h.weights }

// Seed returns the seed feeding the run's random stream.
func (h *Harness) Seed() uint64 { return h.seed }

// Run executes every scenario, writing one record per found path to sink.
// A sink error aborts the run with a *TrialError. Cancellation of ctx is
// checked between trials; a search already in progress runs to completion.
func (h *Harness) Run(ctx context.Context, sink results.Sink) (Stats, error) {
	start := time.Now()
	stats := Stats{
		RunID:   h.cfg.RunID,
		Seed:    h.seed,
		Weights: h.weights,
		NoPath:  make(map[string]int, len(h.routers)),
	}

	log := h.log.With(logging.Component("experiment"))
	if h.cfg.RunID != "" {
		log = log.With(logging.RunID(h.cfg.RunID))
	}
	log.Info("experiment started",
		logging.Int("scenarios", h.cfg.Scenarios),
		logging.Int("repeats", h.cfg.Repeats),
		logging.Nodes(h.cfg.Nodes),
		logging.Float64("edge_probability", h.cfg.EdgeProbability),
		logging.String("weights", h.weights.String()),
		logging.Any("seed", h.seed),
	)

	total := h.cfg.Scenarios * h.cfg.Repeats
	run := 0
	for sc := 1; sc <= h.cfg.Scenarios; sc++ {
		if err := ctx.Err(); err != nil {
			return h.finish(stats, start), fmt.Errorf("experiment interrupted before scenario %d: %w", sc, err)
		}

		net, err := network.GenerateWithRanges(h.rng, h.cfg.Nodes, h.cfg.EdgeProbability, h.cfg.Ranges)
		if err != nil {
			return h.finish(stats, start), &TrialError{Scenario: sc, Op: "generate", Cause: err}
		}
		if !net.Usable() {
			stats.ScenariosSkipped++
			h.metrics.RecordSkippedScenario()
			log.Warn("scenario skipped: network has fewer than two nodes",
				logging.Scenario(sc), logging.Nodes(net.NodeCount()))
			run += h.cfg.Repeats
			continue
		}
		stats.ScenariosRun++
		h.metrics.RecordScenario(net.NodeCount(), net.EdgeCount())
		log.Info(fmt.Sprintf("scenario %d/%d", sc, h.cfg.Scenarios),
			logging.Scenario(sc), logging.Nodes(net.NodeCount()), logging.Edges(net.EdgeCount()))

		for rep := 1; rep <= h.cfg.Repeats; rep++ {
			run++
			source, target := h.pickEndpoints(net)
			log.Debug(fmt.Sprintf("repeat %d/%d (run %d/%d)", rep, h.cfg.Repeats, run, total),
				logging.Scenario(sc), logging.Repeat(rep),
				logging.Int("source", int(source)), logging.Int("target", int(target)))

			for _, router := range h.routers {
				if err := ctx.Err(); err != nil {
					return h.finish(stats, start), fmt.Errorf("experiment interrupted after %d trials: %w", stats.Trials, err)
				}
				if err := h.trial(ctx, log, sink, &stats, net, router, sc, rep, source, target); err != nil {
					return h.finish(stats, start), err
				}
			}
		}
	}

	stats = h.finish(stats, start)
	log.Info("experiment finished",
		logging.Int("records", stats.Records),
		logging.Int("trials", stats.Trials),
		logging.Int("skipped", stats.ScenariosSkipped),
		logging.Latency(stats.Duration))
	return stats, nil
}

func (h *Harness) finish(stats Stats, start time.Time) Stats {
	stats.Duration = time.Since(start)
	return stats
}

func (h *Harness) trial(ctx context.Context, log logging.Logger, sink results.Sink, stats *Stats,
	net *network.Network, router routing.Router, sc, rep int, source, target network.NodeID) error {
	label := router.Algorithm().String()
	stats.Trials++

	began := time.Now()
	path, ok := router.Route(net, source, target, h.weights)
	elapsed := time.Since(began)

	if !ok {
		stats.NoPath[label]++
		h.metrics.RecordSearch(label, false, elapsed, 0, 0)
		log.Warn("no path found",
			logging.Scenario(sc), logging.Repeat(rep), logging.Algorithm(label),
			logging.Int("source", int(source)), logging.Int("target", int(target)))
		return nil
	}

	m := qos.EvaluateWithBandwidth(net, path, h.weights, h.cfg.MaxBandwidth)
	h.metrics.RecordSearch(label, true, elapsed, path.Hops(), m.TotalCost)

	rec := results.Record{
		RunID:      h.cfg.RunID,
		Timestamp:  h.now(),
		ScenarioID: sc,
		RepeatID:   rep,
		Algorithm:  label,
		Nodes:      net.NodeCount(),
		Edges:      net.EdgeCount(),
		Source:     source,
		Target:     target,
		Weights:    h.weights,
		PathLength: len(path),
		Metrics:    m,
	}
	err := sink.Write(ctx, rec)
	h.metrics.RecordWrite(label, err)
	if err != nil {
		return &TrialError{Scenario: sc, Repeat: rep, Algorithm: label, Op: "write", Cause: err}
	}
	stats.Records++

	log.Debug(label+" done",
		logging.Scenario(sc), logging.Repeat(rep), logging.Algorithm(label),
		logging.Int("path_length", len(path)),
		logging.Float64("total_cost", m.TotalCost),
		logging.Latency(elapsed))
	return nil
}

// pickEndpoints draws an ordered pair of distinct nodes uniformly.
func (h *Harness) pickEndpoints(net *network.Network) (network.NodeID, network.NodeID) {
	ids := net.NodeIDs()
	i := h.rng.IntN(len(ids))
	j := h.rng.IntN(len(ids) - 1)
	if j >= i {
		j++
	}
	return ids[i], ids[j]
}
