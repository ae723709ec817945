package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/dockflow/config"
	coremetrics "github.com/kilianp07/dockflow/core/metrics"
	"github.com/kilianp07/dockflow/core/simulate"
	"github.com/kilianp07/dockflow/core/store"
	"github.com/kilianp07/dockflow/infra/logger"
	_ "github.com/kilianp07/dockflow/infra/store"
)

// SimulateJob runs Monte Carlo simulations against persisted models.
type SimulateJob struct {
	sim    *simulate.Simulator
	sink   coremetrics.MetricsSink
	trials int
	log    logger.Logger
}

// NewSimulateJob opens the model store and metrics sinks described by cfg.
func NewSimulateJob(cfg *config.Config) (*SimulateJob, error) {
	st, err := store.NewModelStore(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("model store: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("metrics: %w", err)
	}
	return newSimulateJob(cfg, st, sink), nil
}

func newSimulateJob(cfg *config.Config, st store.ModelStore, sink coremetrics.MetricsSink) *SimulateJob {
	log := logger.New("simulate")
	return &SimulateJob{
		sim: &simulate.Simulator{
			Store:   st,
			Policy:  simulate.PoissonPolicy{Resolution: cfg.Simulate.Resolution},
			Seed:    cfg.Simulate.Seed,
			Workers: cfg.Simulate.Workers,
			Logger:  log,
		},
		sink:   sink,
		trials: cfg.Simulate.Trials,
		log:    log,
	}
}

// Run simulates req and records its summary. Trials default to the
// configured count when req leaves them unset.
func (j *SimulateJob) Run(ctx context.Context, req simulate.Request) (simulate.Result, simulate.Summary, error) {
	if req.Trials == 0 {
		req.Trials = j.trials
	}
	res, err := j.sim.Simulate(ctx, req)
	if err != nil {
		return simulate.Result{}, simulate.Summary{}, err
	}
	sum := simulate.Summarize(res)
	if rec, ok := j.sink.(coremetrics.SimulationRecorder); ok {
		if err := rec.RecordSimulation(coremetrics.SimulationEvent{
			StationID: req.StationID,
			Mode:      req.Mode,
			Start:     req.Start,
			End:       req.End,
			Month:     req.Month,
			Weekday:   req.Weekday,
			Summary:   sum,
			Time:      time.Now(),
		}); err != nil {
			j.log.Warnf("record simulation: %v", err)
		}
	}
	if f, ok := j.sink.(coremetrics.Flusher); ok {
		if err := f.Flush(ctx); err != nil {
			j.log.Warnf("metrics flush: %v", err)
		}
	}
	return res, sum, nil
}

// Close releases the model store.
func (j *SimulateJob) Close() error {
	return j.sim.Store.Close()
}
