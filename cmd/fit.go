package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/dockflow/app"
)

var (
	fitRebalance bool
	fitInterval  time.Duration
	fitWorkers   int
	fitAsOf      string
)

var fitCmd = &cobra.Command{
	Use:   "fit [station-id...]",
	Short: "Fit and persist demand models for stations",
	Long: "Fit reconciles each station's snapshots into interval counts, fits the " +
		"arrival and departure Poisson models and stores them. Without arguments " +
		"every station active on the as-of date is fitted.",
	RunE: runFit,
}

func init() {
	fitCmd.Flags().BoolVar(&fitRebalance, "rebalance", false, "correct counts for operator rebalancing")
	fitCmd.Flags().DurationVar(&fitInterval, "interval", 0, "bucket width, defaults to fit.interval")
	fitCmd.Flags().IntVar(&fitWorkers, "workers", 0, "stations fitted in parallel, defaults to fit.workers")
	fitCmd.Flags().StringVar(&fitAsOf, "as-of", "", "station directory date (YYYY-MM-DD)")
	rootCmd.AddCommand(fitCmd)
}

func runFit(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("rebalance") {
		cfg.Fit.Rebalance = fitRebalance
	}
	if fitInterval != 0 {
		cfg.Fit.Interval = fitInterval
	}
	if fitWorkers != 0 {
		cfg.Fit.Workers = fitWorkers
	}
	if fitAsOf != "" {
		cfg.Fit.AsOf = fitAsOf
	}
	if err := cfg.Fit.Validate(); err != nil {
		return fmt.Errorf("fit: %w", err)
	}

	job, err := app.NewFitJob(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = job.Close() }()

	ctx, stop := signalContext()
	defer stop()
	rep, err := job.Run(ctx, ids)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "run %s: %d/%d stations fitted (%s)\n", rep.RunID, rep.Succeeded(), len(rep.Results), cfg.Fit.Mode().Tag())
	for _, f := range rep.Failures() {
		_, _ = fmt.Fprintf(out, "  station %d failed at %s: %s\n", f.StationID, f.Stage, f.Error)
	}
	return nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid station id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
