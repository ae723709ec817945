// Package export writes simulation outcomes for downstream analysis.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/dockflow/core/simulate"
)

// Trial is the exported form of one simulated trial.
type Trial struct {
	Trial int  `json:"trial"`
	Final int  `json:"final"`
	Empty bool `json:"empty"`
	Full  bool `json:"full"`
}

// Document is the JSON export of a simulation.
type Document struct {
	StationID int64            `json:"station_id"`
	Summary   simulate.Summary `json:"summary"`
	Trials    []Trial          `json:"trials,omitempty"`
}

// Trials flattens a result into rows.
func Trials(res simulate.Result) []Trial {
	out := make([]Trial, len(res.Finals))
	for i := range res.Finals {
		out[i] = Trial{Trial: i, Final: res.Finals[i], Empty: res.Empty[i], Full: res.Full[i]}
	}
	return out
}

// WriteJSON writes the summary and, when withTrials is set, every trial.
func WriteJSON(w io.Writer, stationID int64, res simulate.Result, withTrials bool) error {
	doc := Document{StationID: stationID, Summary: simulate.Summarize(res)}
	if withTrials {
		doc.Trials = Trials(res)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteCSV writes one row per trial.
func WriteCSV(w io.Writer, res simulate.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"trial", "final", "empty", "full"}); err != nil {
		return err
	}
	for _, t := range Trials(res) {
		rec := []string{
			strconv.Itoa(t.Trial),
			strconv.Itoa(t.Final),
			strconv.FormatBool(t.Empty),
			strconv.FormatBool(t.Full),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHistogramHTML renders the distribution of final counts as a bar chart
// covering every count from 0 to capacity.
func WriteHistogramHTML(w io.Writer, stationID int64, capacity int, sum simulate.Summary) error {
	if capacity < 0 {
		return fmt.Errorf("invalid capacity %d", capacity)
	}
	top := capacity
	for _, f := range sum.Histogram {
		if f.Count > top {
			top = f.Count
		}
	}
	counts := make([]int, top+1)
	for _, f := range sum.Histogram {
		if f.Count >= 0 {
			counts[f.Count] = f.Trials
		}
	}
	labels := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		labels[i] = strconv.Itoa(i)
		data[i] = opts.BarData{Value: c}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("Station %d final vehicle count", stationID),
			Subtitle: fmt.Sprintf("%d trials, P(empty)=%.3f, P(full)=%.3f",
				sum.Trials, sum.EmptyProbability, sum.FullProbability),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "vehicles"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "trials"}),
	)
	bar.SetXAxis(labels).AddSeries("trials", data)
	return bar.Render(w)
}
