package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/dockflow/app"
)

var stationsAsOf string

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "List the stations active on the as-of date",
	RunE:  runStations,
}

func init() {
	stationsCmd.Flags().StringVar(&stationsAsOf, "as-of", "", "reference date (YYYY-MM-DD), defaults to fit.as_of")
	rootCmd.AddCommand(stationsCmd)
}

func runStations(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if stationsAsOf != "" {
		cfg.Fit.AsOf = stationsAsOf
		if _, err := cfg.Fit.AsOfDate(); err != nil {
			return err
		}
	}
	job, err := app.NewFitJob(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = job.Close() }()

	ctx, stop := signalContext()
	defer stop()
	stations, err := job.Stations(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tLAT\tLON\tCAPACITY")
	for _, st := range stations {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%.6f\t%.6f\t%d\n", st.ID, st.Name, st.Latitude, st.Longitude, st.Capacity)
	}
	return tw.Flush()
}
