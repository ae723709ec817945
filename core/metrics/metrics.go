package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/dockflow/core/model"
	"github.com/kilianp07/dockflow/core/simulate"
)

// FitEvent reports the outcome of one station in a fit batch. A non-empty
// Stage together with Err marks a failure.
type FitEvent struct {
	RunID     string
	StationID int64
	Mode      model.RebalanceMode
	Records   int
	Stage     string
	Err       error
	Duration  time.Duration
	Time      time.Time
}

// MetricsSink records per-station fit outcomes.
type MetricsSink interface {
	RecordStationFit(ev FitEvent) error
}

// BatchEvent summarises a finished fit batch.
type BatchEvent struct {
	RunID     string
	Mode      model.RebalanceMode
	Stations  int
	Succeeded int
	Failed    int
	Duration  time.Duration
	Time      time.Time
}

// BatchRecorder records batch summaries.
type BatchRecorder interface {
	RecordBatch(ev BatchEvent) error
}

// SimulationEvent carries the summary of one simulate call.
type SimulationEvent struct {
	StationID int64
	Mode      model.RebalanceMode
	Start     time.Time
	End       time.Time
	Month     int
	Weekday   bool
	Summary   simulate.Summary
	Time      time.Time
}

// SimulationRecorder records simulation summaries.
type SimulationRecorder interface {
	RecordSimulation(ev SimulationEvent) error
}

// Flusher is implemented by sinks that buffer or push their data at the end
// of a run.
type Flusher interface {
	Flush(ctx context.Context) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordStationFit(FitEvent) error        { return nil }
func (NopSink) RecordBatch(BatchEvent) error           { return nil }
func (NopSink) RecordSimulation(SimulationEvent) error { return nil }
func (NopSink) Flush(context.Context) error            { return nil }
