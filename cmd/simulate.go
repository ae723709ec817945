package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/dockflow/app"
	"github.com/kilianp07/dockflow/core/model"
	"github.com/kilianp07/dockflow/core/simulate"
	"github.com/kilianp07/dockflow/pkg/export"
)

var simOpts struct {
	station   int64
	start     string
	end       string
	capacity  int
	starting  int
	month     int
	weekday   bool
	trials    int
	rebalance bool
	format    string
	out       string
	withTrial bool
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate a station's occupancy from its fitted model",
	RunE:  runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.Int64Var(&simOpts.station, "station", 0, "station id")
	f.StringVar(&simOpts.start, "start", "", "window start (RFC3339)")
	f.StringVar(&simOpts.end, "end", "", "window end (RFC3339)")
	f.IntVar(&simOpts.capacity, "capacity", 0, "dock capacity")
	f.IntVar(&simOpts.starting, "starting", 0, "vehicles present at start")
	f.IntVar(&simOpts.month, "month", 0, "month used for rates, defaults to the start month")
	f.BoolVar(&simOpts.weekday, "weekday", true, "use weekday rates")
	f.IntVar(&simOpts.trials, "trials", 0, "number of trials, defaults to simulate.trials")
	f.BoolVar(&simOpts.rebalance, "rebalance", false, "use the rebalance-corrected model")
	f.StringVar(&simOpts.format, "format", "json", "output format: json, csv or html")
	f.StringVar(&simOpts.out, "out", "", "output file, stdout when empty")
	f.BoolVar(&simOpts.withTrial, "trials-detail", false, "include every trial in JSON output")
	_ = simulateCmd.MarkFlagRequired("station")
	_ = simulateCmd.MarkFlagRequired("start")
	_ = simulateCmd.MarkFlagRequired("end")
	_ = simulateCmd.MarkFlagRequired("capacity")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	start, err := time.Parse(time.RFC3339, simOpts.start)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, simOpts.end)
	if err != nil {
		return fmt.Errorf("end: %w", err)
	}
	switch simOpts.format {
	case "json", "csv", "html":
	default:
		return fmt.Errorf("unknown format %s", simOpts.format)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	loc, err := cfg.Fit.Loc()
	if err != nil {
		return err
	}
	start, end = start.In(loc), end.In(loc)
	month := simOpts.month
	if month == 0 {
		month = int(start.Month())
	}

	job, err := app.NewSimulateJob(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = job.Close() }()

	ctx, stop := signalContext()
	defer stop()
	res, sum, err := job.Run(ctx, simulate.Request{
		StationID:     simOpts.station,
		Mode:          model.ModeFromBool(simOpts.rebalance),
		Start:         start,
		End:           end,
		Capacity:      simOpts.capacity,
		StartingCount: simOpts.starting,
		Month:         month,
		Weekday:       simOpts.weekday,
		Trials:        simOpts.trials,
	})
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if simOpts.out != "" {
		f, err := os.Create(simOpts.out)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	switch simOpts.format {
	case "csv":
		return export.WriteCSV(w, res)
	case "html":
		return export.WriteHistogramHTML(w, simOpts.station, simOpts.capacity, sum)
	default:
		return export.WriteJSON(w, simOpts.station, res, simOpts.withTrial)
	}
}
