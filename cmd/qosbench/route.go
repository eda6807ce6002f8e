package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/dd0wney/qosroute/pkg/config"
	"github.com/dd0wney/qosroute/pkg/logging"
	"github.com/dd0wney/qosroute/pkg/network"
	"github.com/dd0wney/qosroute/pkg/qos"
	"github.com/dd0wney/qosroute/pkg/routing"
)

type routeOptions struct {
	source int
	target int
}

// routeResult is one algorithm's answer for a single instance.
type routeResult struct {
	algorithm routing.Algorithm
	path      network.Path
	found     bool
	metrics   qos.Metrics
}

func newRouteCmd(opts *rootOptions) *cobra.Command {
	ro := &routeOptions{}
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Generate one network and route a single source/target pair with every algorithm",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return routeOnce(cmd.OutOrStdout(), cfg, logger, ro)
		},
	}

	fs := cmd.Flags()
	addNetworkFlags(fs)
	fs.IntVar(&ro.source, "source", -1, "source node id (-1 picks one at random)")
	fs.IntVar(&ro.target, "target", -1, "target node id (-1 picks one at random)")
	return cmd
}

func routeOnce(w io.Writer, cfg config.Config, logger logging.Logger, ro *routeOptions) error {
	weights, err := cfg.Weights.Normalize()
	if err != nil {
		return err
	}
	algs, err := routing.ParseAlgorithms(cfg.Algorithms)
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	net, err := network.GenerateWithRanges(rng, cfg.Nodes, cfg.EdgeProbability, cfg.Ranges)
	if err != nil {
		return err
	}
	if !net.Usable() {
		return fmt.Errorf("generated network has %d nodes; need at least 2 (try a higher --p)", net.NodeCount())
	}

	source, target, err := endpoints(net, rng, ro)
	if err != nil {
		return err
	}
	logger.Info("routing single instance",
		logging.Operation("route"),
		logging.Nodes(net.NodeCount()), logging.Edges(net.EdgeCount()),
		logging.Int("source", int(source)), logging.Int("target", int(target)),
		logging.Int("source_degree", net.Degree(source)), logging.Int("target_degree", net.Degree(target)),
		logging.Any("seed", seed))

	var rows []routeResult
	for _, alg := range algs {
		router, err := routing.New(alg, cfg.Learning, rng)
		if err != nil {
			return err
		}
		path, ok := router.Route(net, source, target, weights)
		res := routeResult{algorithm: alg, path: path, found: ok}
		if ok {
			res.metrics = qos.EvaluateWithBandwidth(net, path, weights, cfg.MaxBandwidth)
		} else {
			logger.Warn("no path found", logging.Algorithm(alg.String()))
		}
		rows = append(rows, res)
	}

	fmt.Fprintf(w, "network: %d nodes, %d edges  source=%d target=%d  weights %s  seed=%d\n",
		net.NodeCount(), net.EdgeCount(), source, target, weights, seed)
	fmt.Fprintln(w, renderRoutes(rows))
	return nil
}

func endpoints(net *network.Network, rng *rand.Rand, ro *routeOptions) (network.NodeID, network.NodeID, error) {
	ids := net.NodeIDs()
	pick := func(flag int, name string, avoid network.NodeID, hasAvoid bool) (network.NodeID, error) {
		if flag >= 0 {
			if !net.HasNode(network.NodeID(flag)) {
				return 0, fmt.Errorf("%s node %d is not in the generated network", name, flag)
			}
			return network.NodeID(flag), nil
		}
		for {
			id := ids[rng.IntN(len(ids))]
			if !hasAvoid || id != avoid {
				return id, nil
			}
		}
	}
	source, err := pick(ro.source, "source", 0, false)
	if err != nil {
		return 0, 0, err
	}
	target, err := pick(ro.target, "target", source, ro.target < 0)
	if err != nil {
		return 0, 0, err
	}
	return source, target, nil
}

func renderRoutes(rows []routeResult) string {
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		if !r.found {
			data = append(data, []string{r.algorithm.String(), "no path", "-", "-", "-", "-"})
			continue
		}
		hops := make([]string, len(r.path))
		for i, id := range r.path {
			hops[i] = fmt.Sprint(int(id))
		}
		data = append(data, []string{
			r.algorithm.String(),
			strings.Join(hops, " → "),
			fmt.Sprintf("%.3f", r.metrics.TotalDelay),
			fmt.Sprintf("%.5f", r.metrics.ReliabilityCost),
			fmt.Sprintf("%.3f", r.metrics.ResourceCost),
			fmt.Sprintf("%.4f", r.metrics.TotalCost),
		})
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FFFF")).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ALGORITHM", "PATH", "DELAY", "REL COST", "RES COST", "TOTAL").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Render()
}
