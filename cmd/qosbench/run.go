package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dd0wney/qosroute/pkg/config"
	"github.com/dd0wney/qosroute/pkg/experiment"
	"github.com/dd0wney/qosroute/pkg/logging"
	"github.com/dd0wney/qosroute/pkg/metrics"
	"github.com/dd0wney/qosroute/pkg/report"
	"github.com/dd0wney/qosroute/pkg/results"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the batch experiment and write one record per found path",
		Example: `  qosbench run --scenarios 5 --repeats 2 --nodes 100
  qosbench run --output results.csv.sz --output postgres://lab@db/qos
  qosbench run --output s3://lab-results/runs/today.csv --summary-file summary.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runExperiment(ctx, cmd, cfg, logger)
		},
	}

	d := config.Default()
	fs := cmd.Flags()
	fs.Int("scenarios", d.Scenarios, "networks to generate")
	fs.Int("repeats", d.Repeats, "endpoint pairs per network")
	addNetworkFlags(fs)
	fs.StringSliceP("output", "o", d.Outputs, "result destinations: file (.csv, .csv.sz), postgres://, s3://bucket/key, tcp:// or ipc:// publisher")
	fs.String("metrics-file", "", "write Prometheus metrics to this textfile")
	fs.String("summary-file", "", "write the YAML run summary to this file")
	return cmd
}

func runExperiment(ctx context.Context, cmd *cobra.Command, cfg config.Config, logger logging.Logger) error {
	runID := uuid.NewString()
	log := logger.With(logging.RunID(runID))

	expCfg, err := cfg.Experiment()
	if err != nil {
		return err
	}
	reg := metrics.NewRegistry()
	expCfg.RunID = runID
	expCfg.Logger = logger
	expCfg.Metrics = reg

	h, err := experiment.New(expCfg)
	if err != nil {
		return err
	}

	out, err := results.OpenAll(ctx, cfg.Outputs, runID)
	if err != nil {
		return err
	}
	collector := report.NewCollector()
	sink := results.NewMultiSink(out, collector)

	timer := logging.StartTimer(log, "run complete",
		logging.Operation("run"), logging.Any("outputs", cfg.Outputs))
	stats, runErr := h.Run(ctx, sink)
	closeErr := sink.Close()
	if runErr != nil {
		timer.EndError(runErr)
	} else {
		timer.End(logging.Int("records", stats.Records))
	}

	summary := collector.Summarize(stats)
	var errs []error
	errs = append(errs, runErr, closeErr)
	if err := report.Render(cmd.OutOrStdout(), summary); err != nil {
		errs = append(errs, err)
	}
	if cfg.SummaryFile != "" {
		if err := report.WriteYAML(cfg.SummaryFile, summary); err != nil {
			errs = append(errs, err)
		} else {
			log.Info("summary written", logging.Path(cfg.SummaryFile))
		}
	}
	if cfg.MetricsFile != "" {
		if err := reg.WriteTextfile(cfg.MetricsFile); err != nil {
			errs = append(errs, err)
		} else {
			log.Info("metrics written", logging.Path(cfg.MetricsFile))
		}
	}
	return errors.Join(errs...)
}
