package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/dockflow/core/metrics"
	"github.com/kilianp07/dockflow/infra/logger"
)

// InfluxConfig holds the InfluxDB connection settings.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes fit and simulation events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordStationFit writes one point per station outcome.
func (s *InfluxSink) RecordStationFit(ev coremetrics.FitEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("station_fit").
		AddTag("station_id", strconv.FormatInt(ev.StationID, 10)).
		AddTag("mode", ev.Mode.Tag()).
		AddTag("run_id", ev.RunID).
		AddField("records", ev.Records).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		AddField("ok", ev.Err == nil)
	if ev.Err != nil {
		p = p.AddTag("stage", ev.Stage).AddField("error", ev.Err.Error())
	}
	return s.writeAPI.WritePoint(ctx, p.SetTime(ev.Time))
}

// RecordBatch writes the batch summary.
func (s *InfluxSink) RecordBatch(ev coremetrics.BatchEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("fit_batch").
		AddTag("mode", ev.Mode.Tag()).
		AddTag("run_id", ev.RunID).
		AddField("stations", ev.Stations).
		AddField("succeeded", ev.Succeeded).
		AddField("failed", ev.Failed).
		AddField("duration_s", round3(ev.Duration.Seconds())).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSimulation writes the outcome summary of a simulation.
func (s *InfluxSink) RecordSimulation(ev coremetrics.SimulationEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sum := ev.Summary
	p := write.NewPointWithMeasurement("simulation_summary").
		AddTag("station_id", strconv.FormatInt(ev.StationID, 10)).
		AddTag("mode", ev.Mode.Tag()).
		AddTag("weekday", strconv.FormatBool(ev.Weekday)).
		AddField("trials", sum.Trials).
		AddField("empty_probability", round3(sum.EmptyProbability)).
		AddField("full_probability", round3(sum.FullProbability)).
		AddField("mean_final", round3(sum.MeanFinal)).
		AddField("stddev_final", round3(sum.StdDevFinal)).
		AddField("horizon_s", ev.End.Sub(ev.Start).Seconds()).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
