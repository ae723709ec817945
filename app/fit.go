// Package app wires configured collaborators into the fit and simulate jobs.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/dockflow/config"
	"github.com/kilianp07/dockflow/core/batch"
	"github.com/kilianp07/dockflow/core/demand"
	coremetrics "github.com/kilianp07/dockflow/core/metrics"
	"github.com/kilianp07/dockflow/core/model"
	coremon "github.com/kilianp07/dockflow/core/monitoring"
	"github.com/kilianp07/dockflow/core/reconcile"
	"github.com/kilianp07/dockflow/core/store"
	"github.com/kilianp07/dockflow/infra/logger"
	"github.com/kilianp07/dockflow/infra/monitoring"
	"github.com/kilianp07/dockflow/infra/report"
	_ "github.com/kilianp07/dockflow/infra/store"
	"github.com/kilianp07/dockflow/infra/warehouse"
	"github.com/kilianp07/dockflow/internal/eventbus"
)

// FitJob fits and persists the demand model of every requested station.
type FitJob struct {
	cfg       *config.Config
	warehouse *warehouse.Warehouse
	store     store.ModelStore
	sink      coremetrics.MetricsSink
	monitor   coremon.Monitor
	report    *report.Writer
	log       logger.Logger
}

// NewFitJob opens the warehouse, the model store, the metrics sinks, the
// monitor and the report writer described by cfg.
func NewFitJob(cfg *config.Config) (*FitJob, error) {
	if err := cfg.ValidateWarehouse(); err != nil {
		return nil, err
	}
	log := logger.New("fit")
	loc, err := cfg.Fit.Loc()
	if err != nil {
		return nil, err
	}
	j := &FitJob{cfg: cfg, log: log}
	if j.warehouse, err = warehouse.Open(cfg.Warehouse, loc, logger.New("warehouse")); err != nil {
		return nil, err
	}
	if j.store, err = store.NewModelStore(cfg.Store); err != nil {
		_ = j.Close()
		return nil, fmt.Errorf("model store: %w", err)
	}
	if j.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
		_ = j.Close()
		return nil, fmt.Errorf("metrics: %w", err)
	}
	if j.monitor, err = monitoring.NewSentryMonitor(cfg.Sentry); err != nil {
		_ = j.Close()
		return nil, fmt.Errorf("sentry: %w", err)
	}
	if !cfg.Report.Disabled {
		r := cfg.Report
		if j.report, err = report.NewWriter(r.Path, r.MaxSizeMB, r.MaxBackups, r.MaxAgeDays); err != nil {
			_ = j.Close()
			return nil, fmt.Errorf("report: %w", err)
		}
	}
	return j, nil
}

// Warehouse exposes the ingestion source.
func (j *FitJob) Warehouse() *warehouse.Warehouse { return j.warehouse }

// Store exposes the model store.
func (j *FitJob) Store() store.ModelStore { return j.store }

// Stations lists the stations active on the configured as-of date.
func (j *FitJob) Stations(ctx context.Context) ([]model.Station, error) {
	asOf, err := j.cfg.Fit.AsOfDate()
	if err != nil {
		return nil, err
	}
	return j.warehouse.Stations(ctx, asOf)
}

// Run fits the stations listed in ids, or every active station when ids is
// empty. Station failures are reported, not returned.
func (j *FitJob) Run(ctx context.Context, ids []int64) (batch.Report, error) {
	stations, err := j.Stations(ctx)
	if err != nil {
		return batch.Report{}, err
	}
	stations = selectStations(stations, ids, j.log)

	loc, err := j.cfg.Fit.Loc()
	if err != nil {
		return batch.Report{}, err
	}
	bus := eventbus.New()
	done := StartProgressLogger(ctx, bus, len(stations), j.log)

	r := &batch.Runner{
		Snapshots: j.warehouse,
		Moves:     j.warehouse,
		Engine:    reconcile.NewEngine(j.cfg.Fit.Interval, loc, logger.New("reconcile")),
		Fitter: demand.Fitter{
			Basis:         demand.BasisKind(j.cfg.Fit.Basis),
			MaxIterations: j.cfg.Fit.MaxIterations,
			Tolerance:     j.cfg.Fit.Tolerance,
			Logger:        logger.New("demand"),
		},
		Store:   j.store,
		Mode:    j.cfg.Fit.Mode(),
		Workers: j.cfg.Fit.Workers,
		Sink:    j.sink,
		Monitor: j.monitor,
		Bus:     bus,
		Logger:  j.log,
	}
	rep := r.Run(ctx, stations)
	bus.Close()
	<-done

	var errs []error
	if j.report != nil {
		if err := j.report.Write(rep); err != nil {
			errs = append(errs, fmt.Errorf("report: %w", err))
		}
	}
	if f, ok := j.sink.(coremetrics.Flusher); ok {
		if err := f.Flush(ctx); err != nil {
			j.log.Warnf("metrics flush: %v", err)
		}
	}
	j.monitor.Flush(time.Duration(j.cfg.Sentry.FlushSeconds) * time.Second)
	return rep, errors.Join(errs...)
}

// Close releases every resource opened by NewFitJob.
func (j *FitJob) Close() error {
	var errs []error
	if j.report != nil {
		errs = append(errs, j.report.Close())
	}
	if j.store != nil {
		errs = append(errs, j.store.Close())
	}
	if j.warehouse != nil {
		errs = append(errs, j.warehouse.Close())
	}
	return errors.Join(errs...)
}

func selectStations(all []model.Station, ids []int64, log logger.Logger) []model.Station {
	if len(ids) == 0 {
		return all
	}
	byID := make(map[int64]model.Station, len(all))
	for _, st := range all {
		byID[st.ID] = st
	}
	out := make([]model.Station, 0, len(ids))
	for _, id := range ids {
		st, ok := byID[id]
		if !ok {
			log.Warnf("station %d not in directory, fitting without coordinates", id)
			st = model.Station{ID: id}
		}
		out = append(out, st)
	}
	return out
}
