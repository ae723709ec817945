// Package batch drives the per-station fit pipeline over a station list.
// Stations are independent: a failure is recorded in the station's Result
// and never stops the rest of the run.
package batch

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/dockflow/core/demand"
	"github.com/kilianp07/dockflow/core/events"
	"github.com/kilianp07/dockflow/core/ingest"
	"github.com/kilianp07/dockflow/core/logger"
	"github.com/kilianp07/dockflow/core/metrics"
	"github.com/kilianp07/dockflow/core/model"
	"github.com/kilianp07/dockflow/core/monitoring"
	"github.com/kilianp07/dockflow/core/reconcile"
	"github.com/kilianp07/dockflow/core/store"
	"github.com/kilianp07/dockflow/internal/eventbus"
)

// Runner fits and persists one model per station.
type Runner struct {
	Snapshots ingest.SnapshotSource
	Moves     ingest.RebalanceSource
	Engine    reconcile.Engine
	Fitter    demand.Fitter
	Store     store.ModelStore
	Mode      model.RebalanceMode
	Workers   int

	Sink    metrics.MetricsSink
	Monitor monitoring.Monitor
	Bus     eventbus.EventBus
	Logger  logger.Logger
}

// Run processes every station and returns the batch report. Only context
// cancellation marks the remaining stations as failed without running them.
func (r *Runner) Run(ctx context.Context, stations []model.Station) Report {
	r.defaults()
	rep := Report{
		RunID:   uuid.NewString(),
		Mode:    r.Mode,
		Started: time.Now(),
		Results: make([]Result, len(stations)),
	}
	r.Logger.Infof("fit run %s: %d stations, mode %s", rep.RunID, len(stations), r.Mode.Tag())

	var g errgroup.Group
	g.SetLimit(r.Workers)
	for i, st := range stations {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				rep.Results[i] = Result{StationID: st.ID, Mode: r.Mode, Stage: StageIngest, Err: err, Error: err.Error()}
				return nil
			}
			rep.Results[i] = r.station(ctx, rep.RunID, st)
			return nil
		})
	}
	_ = g.Wait()
	rep.Finished = time.Now()

	ok := rep.Succeeded()
	if rec, isRec := r.Sink.(metrics.BatchRecorder); isRec {
		if err := rec.RecordBatch(metrics.BatchEvent{
			RunID:     rep.RunID,
			Mode:      r.Mode,
			Stations:  len(stations),
			Succeeded: ok,
			Failed:    len(stations) - ok,
			Duration:  rep.Finished.Sub(rep.Started),
			Time:      rep.Finished,
		}); err != nil {
			r.Logger.Warnf("record batch: %v", err)
		}
	}
	r.Logger.Infof("fit run %s done: %d ok, %d failed in %s", rep.RunID, ok, len(stations)-ok, rep.Finished.Sub(rep.Started))
	return rep
}

// FitStation runs the pipeline for a single station.
func (r *Runner) FitStation(ctx context.Context, st model.Station) Result {
	r.defaults()
	return r.station(ctx, "", st)
}

func (r *Runner) station(ctx context.Context, runID string, st model.Station) Result {
	tick := time.Now()
	r.Bus.Publish(events.StationStarted{RunID: runID, StationID: st.ID, Mode: r.Mode, Time: tick})
	r.Logger.Debugw("station start", map[string]any{"run_id": runID, "station_id": st.ID, "mode": r.Mode.Tag()})

	res := Result{StationID: st.ID, Mode: r.Mode}
	m, records, stage, err := r.fit(ctx, st)
	res.Records = records
	if err == nil {
		stage = StagePersist
		if err = r.Store.Save(ctx, m); err == nil {
			res.Model = m
			res.Key = store.Key(st.ID, r.Mode)
		}
	}
	res.Duration = time.Since(tick)

	ev := metrics.FitEvent{RunID: runID, StationID: st.ID, Mode: r.Mode, Records: records, Duration: res.Duration, Time: time.Now()}
	if err != nil {
		res.Stage, res.Err, res.Error = stage, err, err.Error()
		ev.Stage, ev.Err = stage, err
		r.Logger.Errorf("station %d failed at %s: %v", st.ID, stage, err)
		r.Monitor.CaptureException(err, map[string]string{
			"station_id": strconv.FormatInt(st.ID, 10),
			"stage":      stage,
			"mode":       r.Mode.Tag(),
		})
		r.Bus.Publish(events.StationFailed{RunID: runID, StationID: st.ID, Mode: r.Mode, Stage: stage, Err: err})
	} else {
		r.Logger.Debugw("station end", map[string]any{"station_id": st.ID, "key": res.Key, "records": records, "duration": res.Duration.Seconds()})
		r.Bus.Publish(events.StationFitted{RunID: runID, StationID: st.ID, Mode: r.Mode, Records: records, Key: res.Key, Duration: res.Duration})
	}
	if serr := r.Sink.RecordStationFit(ev); serr != nil {
		r.Logger.Warnf("record station fit: %v", serr)
	}
	return res
}

func (r *Runner) fit(ctx context.Context, st model.Station) (*demand.Model, int, string, error) {
	snaps, err := r.Snapshots.Snapshots(ctx, st)
	if err != nil {
		return nil, 0, StageIngest, fmt.Errorf("snapshots: %w", err)
	}
	var moves []model.RebalanceMove
	if r.Mode == model.Rebalanced {
		if r.Moves == nil {
			return nil, 0, StageIngest, fmt.Errorf("station %d: %w: no rebalance source", st.ID, reconcile.ErrMissingRebalanceData)
		}
		moves, err = r.Moves.RebalanceMoves(ctx, st.ID, r.Engine.Interval)
		if err != nil {
			return nil, 0, StageIngest, fmt.Errorf("rebalance moves: %w", err)
		}
	}
	recs, err := r.Engine.Reconcile(st.ID, r.Mode, snaps, moves)
	if err != nil {
		return nil, 0, StageReconcile, err
	}
	m, err := r.Fitter.Fit(st.ID, r.Mode, r.Engine.Interval, recs)
	if err != nil {
		return nil, len(recs), StageFit, err
	}
	return m, len(recs), "", nil
}

func (r *Runner) defaults() {
	if r.Workers <= 0 {
		r.Workers = 1
	}
	if r.Sink == nil {
		r.Sink = metrics.NopSink{}
	}
	if r.Monitor == nil {
		r.Monitor = monitoring.NopMonitor{}
	}
	if r.Bus == nil {
		r.Bus = eventbus.Nop{}
	}
	r.Logger = logger.OrNop(r.Logger)
	if r.Engine.Interval <= 0 {
		r.Engine.Interval = reconcile.DefaultInterval
	}
}
