package batch

import (
	"time"

	"github.com/kilianp07/dockflow/core/demand"
	"github.com/kilianp07/dockflow/core/model"
)

// Pipeline stages reported on failures.
const (
	StageIngest    = "ingest"
	StageReconcile = "reconcile"
	StageFit       = "fit"
	StagePersist   = "persist"
)

// Result is the outcome of one station: either Model is set, or Stage and
// Err describe where it failed.
type Result struct {
	StationID int64               `json:"station_id"`
	Mode      model.RebalanceMode `json:"mode"`
	Key       string              `json:"key,omitempty"`
	Records   int                 `json:"records"`
	Model     *demand.Model       `json:"-"`
	Stage     string              `json:"stage,omitempty"`
	Err       error               `json:"-"`
	Error     string              `json:"error,omitempty"`
	Duration  time.Duration       `json:"duration"`
}

// OK reports whether the station was fitted and persisted.
func (r Result) OK() bool { return r.Err == nil }

// Report collects the results of a batch in station order.
type Report struct {
	RunID    string              `json:"run_id"`
	Mode     model.RebalanceMode `json:"mode"`
	Started  time.Time           `json:"started"`
	Finished time.Time           `json:"finished"`
	Results  []Result            `json:"results"`
}

// Succeeded returns the number of fitted stations.
func (r Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Failures returns the failed results.
func (r Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}
