// Package config loads experiment settings from an optional YAML file,
// QOSBENCH_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dd0wney/qosroute/pkg/experiment"
	"github.com/dd0wney/qosroute/pkg/logging"
	"github.com/dd0wney/qosroute/pkg/network"
	"github.com/dd0wney/qosroute/pkg/qos"
	"github.com/dd0wney/qosroute/pkg/routing"
)

// EnvPrefix prefixes every environment override, e.g. QOSBENCH_WEIGHTS_DELAY.
const EnvPrefix = "QOSBENCH"

// DefaultOutput is the CSV file written when no output is configured.
const DefaultOutput = "results_experiments.csv"

var validate = validator.New()

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full set of run settings.
type Config struct {
	Scenarios       int                     `yaml:"scenarios" mapstructure:"scenarios" validate:"gte=0"`
	Repeats         int                     `yaml:"repeats" mapstructure:"repeats" validate:"gte=0"`
	Nodes           int                     `yaml:"nodes" mapstructure:"nodes" validate:"gte=0"`
	EdgeProbability float64                 `yaml:"edge_probability" mapstructure:"edge_probability" validate:"gte=0,lte=1"`
	Weights         qos.Weights             `yaml:"weights" mapstructure:"weights"`
	Algorithms      []string                `yaml:"algorithms" mapstructure:"algorithms" validate:"min=1,dive,required"`
	Learning        routing.LearningParams  `yaml:"learning" mapstructure:"learning"`
	Ranges          network.AttributeRanges `yaml:"ranges" mapstructure:"ranges"`
	MaxBandwidth    float64                 `yaml:"max_bandwidth" mapstructure:"max_bandwidth" validate:"gt=0"`
	Seed            uint64                  `yaml:"seed" mapstructure:"seed"`
	Outputs         []string                `yaml:"outputs" mapstructure:"outputs" validate:"min=1,dive,required"`
	MetricsFile     string                  `yaml:"metrics_file" mapstructure:"metrics_file"`
	SummaryFile     string                  `yaml:"summary_file" mapstructure:"summary_file"`
	Log             LogConfig               `yaml:"log" mapstructure:"log"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json console pretty"`
}

// Default returns the reference experiment settings.
func Default() Config {
	exp := experiment.DefaultConfig()
	return Config{
		Scenarios:       exp.Scenarios,
		Repeats:         exp.Repeats,
		Nodes:           exp.Nodes,
		EdgeProbability: exp.EdgeProbability,
		Weights:         exp.Weights,
		Algorithms:      []string{"Dijkstra", "Q-Learning", "SARSA"},
		Learning:        exp.Learning,
		Ranges:          exp.Ranges,
		MaxBandwidth:    exp.MaxBandwidth,
		Outputs:         []string{DefaultOutput},
		Log:             LogConfig{Level: "info", Format: logging.FormatJSON},
	}
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"scenarios":    "scenarios",
	"repeats":      "repeats",
	"nodes":        "nodes",
	"p":            "edge_probability",
	"w-delay":      "weights.delay",
	"w-rel":        "weights.reliability",
	"w-res":        "weights.resource",
	"algorithms":   "algorithms",
	"episodes":     "learning.episodes",
	"max-steps":    "learning.max_steps",
	"alpha":        "learning.alpha",
	"gamma":        "learning.gamma",
	"max-bw":       "max_bandwidth",
	"seed":         "seed",
	"output":       "outputs",
	"metrics-file": "metrics_file",
	"summary-file": "summary_file",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// Load reads path (optional), then environment variables, then any flags in
// flags that were set explicitly, and validates the result.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("scenarios", d.Scenarios)
	v.SetDefault("repeats", d.Repeats)
	v.SetDefault("nodes", d.Nodes)
	v.SetDefault("edge_probability", d.EdgeProbability)
	v.SetDefault("weights.delay", d.Weights.Delay)
	v.SetDefault("weights.reliability", d.Weights.Reliability)
	v.SetDefault("weights.resource", d.Weights.Resource)
	v.SetDefault("algorithms", d.Algorithms)
	v.SetDefault("learning.episodes", d.Learning.Episodes)
	v.SetDefault("learning.max_steps", d.Learning.MaxSteps)
	v.SetDefault("learning.alpha", d.Learning.Alpha)
	v.SetDefault("learning.gamma", d.Learning.Gamma)
	v.SetDefault("learning.epsilon_start", d.Learning.EpsilonStart)
	v.SetDefault("learning.epsilon_end", d.Learning.EpsilonEnd)
	for name, r := range map[string]network.Range{
		"processing_delay": d.Ranges.ProcessingDelay,
		"node_reliability": d.Ranges.NodeReliability,
		"bandwidth":        d.Ranges.Bandwidth,
		"link_delay":       d.Ranges.LinkDelay,
		"link_reliability": d.Ranges.LinkReliability,
	} {
		v.SetDefault("ranges."+name+".min", r.Min)
		v.SetDefault("ranges."+name+".max", r.Max)
	}
	v.SetDefault("max_bandwidth", d.MaxBandwidth)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("outputs", d.Outputs)
	v.SetDefault("metrics_file", d.MetricsFile)
	v.SetDefault("summary_file", d.SummaryFile)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Validate checks field constraints and the cross-field rules the struct
// tags cannot express.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidation(err)
	}
	if _, err := c.Weights.Normalize(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := routing.ParseAlgorithms(c.Algorithms); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.Learning.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.Ranges.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func formatValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s%s (got %v)", fe.Namespace(), fe.Tag(), param(fe.Param()), fe.Value()))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func param(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}

// Experiment converts c into a harness configuration. The logger, metrics
// registry and run id are left for the caller.
func (c Config) Experiment() (experiment.Config, error) {
	algs, err := routing.ParseAlgorithms(c.Algorithms)
	if err != nil {
		return experiment.Config{}, err
	}
	return experiment.Config{
		Scenarios:       c.Scenarios,
		Repeats:         c.Repeats,
		Nodes:           c.Nodes,
		EdgeProbability: c.EdgeProbability,
		Weights:         c.Weights,
		Algorithms:      algs,
		Learning:        c.Learning,
		Ranges:          c.Ranges,
		MaxBandwidth:    c.MaxBandwidth,
		Seed:            c.Seed,
	}, nil
}

// NewLogger builds the configured logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) logging.Logger {
	return logging.NewLogger(w, logging.ParseLevel(l.Level), l.Format)
}
