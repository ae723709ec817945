package metrics

import (
	"context"
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	coremetrics "github.com/kilianp07/dockflow/core/metrics"
)

// PromConfig configures the Prometheus sink. Batch jobs are short lived, so
// metrics are pushed to a Pushgateway on Flush when PushURL is set.
type PromConfig struct {
	PushURL string `json:"push_url"`
	Job     string `json:"job"`
}

// PromSink records fit and simulation outcomes in Prometheus metrics.
type PromSink struct {
	fits      *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	batch     *prometheus.GaugeVec
	batchTime *prometheus.GaugeVec
	empty     *prometheus.GaugeVec
	full      *prometheus.GaugeVec

	gatherer prometheus.Gatherer
	cfg      PromConfig
}

// NewPromSink registers metrics on the default Prometheus registerer.
func NewPromSink(cfg PromConfig) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg PromConfig, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if cfg.Job == "" {
		cfg.Job = "dockflow"
	}
	s := &PromSink{cfg: cfg, gatherer: prometheus.DefaultGatherer}
	if g, ok := reg.(prometheus.Gatherer); ok {
		s.gatherer = g
	}

	var err error
	if s.fits, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dockflow_station_fits_total",
		Help: "Station fits by outcome",
	}, []string{"mode", "status", "stage"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dockflow_station_fit_duration_seconds",
		Help:    "Time spent ingesting, reconciling and fitting one station",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})); err != nil {
		return nil, err
	}
	if s.batch, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dockflow_batch_stations",
		Help: "Stations in the last fit batch by outcome",
	}, []string{"mode", "status"})); err != nil {
		return nil, err
	}
	if s.batchTime, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dockflow_batch_duration_seconds",
		Help: "Duration of the last fit batch",
	}, []string{"mode"})); err != nil {
		return nil, err
	}
	if s.empty, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dockflow_simulation_empty_probability",
		Help: "Share of trials in which the station ran empty",
	}, []string{"station_id", "mode"})); err != nil {
		return nil, err
	}
	if s.full, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dockflow_simulation_full_probability",
		Help: "Share of trials in which the station filled up",
	}, []string{"station_id", "mode"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordStationFit counts the station outcome and observes its duration.
func (s *PromSink) RecordStationFit(ev coremetrics.FitEvent) error {
	status := "ok"
	if ev.Err != nil {
		status = "failed"
	}
	s.fits.WithLabelValues(ev.Mode.Tag(), status, ev.Stage).Inc()
	s.duration.WithLabelValues(ev.Mode.Tag()).Observe(ev.Duration.Seconds())
	return nil
}

// RecordBatch sets the batch gauges.
func (s *PromSink) RecordBatch(ev coremetrics.BatchEvent) error {
	s.batch.WithLabelValues(ev.Mode.Tag(), "ok").Set(float64(ev.Succeeded))
	s.batch.WithLabelValues(ev.Mode.Tag(), "failed").Set(float64(ev.Failed))
	s.batchTime.WithLabelValues(ev.Mode.Tag()).Set(ev.Duration.Seconds())
	return nil
}

// RecordSimulation sets the empty and full probability gauges.
func (s *PromSink) RecordSimulation(ev coremetrics.SimulationEvent) error {
	id := strconv.FormatInt(ev.StationID, 10)
	s.empty.WithLabelValues(id, ev.Mode.Tag()).Set(ev.Summary.EmptyProbability)
	s.full.WithLabelValues(id, ev.Mode.Tag()).Set(ev.Summary.FullProbability)
	return nil
}

// Flush pushes the gathered metrics when a Pushgateway is configured.
func (s *PromSink) Flush(ctx context.Context) error {
	if s.cfg.PushURL == "" {
		return nil
	}
	return push.New(s.cfg.PushURL, s.cfg.Job).Gatherer(s.gatherer).PushContext(ctx)
}
