package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dd0wney/qosroute/pkg/config"
	"github.com/dd0wney/qosroute/pkg/logging"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "qosbench",
		Short: "Compare Dijkstra, Q-Learning and SARSA routing under a QoS cost",
		Long: `qosbench generates random networks, routes random endpoint pairs with a
deterministic shortest-path search and two reinforcement-learning searches,
and records delay, reliability and resource cost for every path found.

Settings come from --config (YAML), QOSBENCH_* environment variables and
flags, with flags taking precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	d := config.Default()
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().String("log-level", d.Log.Level, "log level: debug|info|warn|error")
	cmd.PersistentFlags().String("log-format", d.Log.Format, "log format: json|console|pretty")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newRouteCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// addNetworkFlags registers the flags shared by run and route.
func addNetworkFlags(fs *pflag.FlagSet) {
	d := config.Default()
	fs.Int("nodes", d.Nodes, "nodes sampled per network")
	fs.Float64("p", d.EdgeProbability, "edge probability")
	fs.Float64("w-delay", d.Weights.Delay, "raw delay weight")
	fs.Float64("w-rel", d.Weights.Reliability, "raw reliability weight")
	fs.Float64("w-res", d.Weights.Resource, "raw resource weight")
	fs.StringSlice("algorithms", d.Algorithms, "algorithms to compare")
	fs.Int("episodes", d.Learning.Episodes, "training episodes per search")
	fs.Int("max-steps", d.Learning.MaxSteps, "step cap per episode and rollout")
	fs.Float64("alpha", d.Learning.Alpha, "learning rate")
	fs.Float64("gamma", d.Learning.Gamma, "discount factor")
	fs.Float64("max-bw", d.MaxBandwidth, "bandwidth normaliser for resource cost")
	fs.Uint64("seed", 0, "random seed (0 draws one)")
}

// loadConfig resolves settings for cmd and installs the configured logger.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, logging.Logger, error) {
	cfg, err := config.Load(opts.configFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := cfg.Log.NewLogger(cmd.ErrOrStderr())
	logging.SetDefaultLogger(logger)
	return cfg, logger, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the qosbench version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "qosbench "+strings.TrimSpace(version))
		},
	}
}
