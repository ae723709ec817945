package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/dockflow/core/metrics"
	"github.com/kilianp07/dockflow/core/model"
	"github.com/kilianp07/dockflow/core/simulate"
)

func TestPromSink_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(PromConfig{}, reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordStationFit(coremetrics.FitEvent{StationID: 1, Mode: model.Rebalanced, Duration: time.Second}))
	require.NoError(t, sink.RecordStationFit(coremetrics.FitEvent{StationID: 2, Mode: model.Rebalanced, Stage: "fit", Err: errors.New("x")}))
	require.NoError(t, sink.RecordStationFit(coremetrics.FitEvent{StationID: 3, Mode: model.Rebalanced, Duration: time.Second}))

	assert.Equal(t, 2.0, testutil.ToFloat64(sink.fits.WithLabelValues("rebalanced", "ok", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.fits.WithLabelValues("rebalanced", "failed", "fit")))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.duration))

	require.NoError(t, sink.RecordBatch(coremetrics.BatchEvent{Mode: model.Rebalanced, Succeeded: 2, Failed: 1, Duration: 3 * time.Second}))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.batch.WithLabelValues("rebalanced", "ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(sink.batchTime.WithLabelValues("rebalanced")))

	require.NoError(t, sink.RecordSimulation(coremetrics.SimulationEvent{
		StationID: 35, Mode: model.NotRebalanced,
		Summary: simulate.Summary{EmptyProbability: 0.25, FullProbability: 0.5},
	}))
	assert.Equal(t, 0.25, testutil.ToFloat64(sink.empty.WithLabelValues("35", "notrebalanced")))
	assert.Equal(t, 0.5, testutil.ToFloat64(sink.full.WithLabelValues("35", "notrebalanced")))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(PromConfig{}, reg)
	require.NoError(t, err)
	b, err := NewPromSinkWithRegistry(PromConfig{}, reg)
	require.NoError(t, err)
	require.NoError(t, a.RecordStationFit(coremetrics.FitEvent{Mode: model.NotRebalanced}))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.fits.WithLabelValues("notrebalanced", "ok", "")))
}

func TestPromSink_FlushPushes(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(PromConfig{PushURL: srv.URL}, reg)
	require.NoError(t, err)
	require.NoError(t, sink.RecordStationFit(coremetrics.FitEvent{Mode: model.NotRebalanced}))
	require.NoError(t, sink.Flush(context.Background()))
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/dockflow", path)
}

func TestPromSink_FlushWithoutGateway(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(PromConfig{}, prometheus.NewRegistry())
	require.NoError(t, err)
	assert.NoError(t, sink.Flush(context.Background()))
}
