package events

import (
	"time"

	"github.com/kilianp07/dockflow/core/model"
)

// StationStarted is published before a station is processed.
type StationStarted struct {
	RunID     string
	StationID int64
	Mode      model.RebalanceMode
	Time      time.Time
}

// StationFitted is published once a station's model is persisted.
type StationFitted struct {
	RunID     string
	StationID int64
	Mode      model.RebalanceMode
	Records   int
	Key       string
	Duration  time.Duration
}

// StationFailed is published when a station is skipped. Stage is one of
// "ingest", "reconcile", "fit" or "persist".
type StationFailed struct {
	RunID     string
	StationID int64
	Mode      model.RebalanceMode
	Stage     string
	Err       error
}
