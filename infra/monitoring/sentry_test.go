package monitoring

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/dockflow/config"
	coremon "github.com/kilianp07/dockflow/core/monitoring"
)

func TestNewSentryMonitor_EmptyDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
}

func TestNewSentryMonitor_InvalidDSN(t *testing.T) {
	_, err := NewSentryMonitor(config.SentryConfig{DSN: "not a dsn"})
	assert.Error(t, err)
}

func TestSentryMonitor_Tags(t *testing.T) {
	var mu sync.Mutex
	var got []*sentry.Event
	m, err := newSentryMonitor(config.SentryConfig{DSN: "https://public@example.com/1", Environment: "test"},
		func(ev *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			got = append(got, ev)
			mu.Unlock()
			return nil
		})
	require.NoError(t, err)

	m.CaptureException(nil, nil)
	m.CaptureException(errors.New("degenerate design"), map[string]string{"station_id": "99", "stage": "fit"})
	m.Flush(time.Second)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, "99", got[0].Tags["station_id"])
	assert.Equal(t, "fit", got[0].Tags["stage"])
	assert.Equal(t, "test", got[0].Environment)
}
