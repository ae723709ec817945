package simulate

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/kilianp07/dockflow/core/demand"
)

// Trial is the context handed to a Policy for one independent run. Rand is
// owned by the trial and must not be shared.
type Trial struct {
	Index         int
	StationID     int64
	Start         time.Time
	End           time.Time
	Capacity      int
	StartingCount int
	Month         int
	Weekday       bool
	Model         *demand.Model
	Rand          *rand.Rand
}

// Outcome is the terminal state of one trial.
type Outcome struct {
	Final int
	Empty bool
	Full  bool
}

// Policy draws the evolution of a station over a trial window. Bounds and
// clamping are the policy's responsibility.
type Policy interface {
	Run(ctx context.Context, t Trial) (Outcome, error)
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(ctx context.Context, t Trial) (Outcome, error)

// Run calls f(ctx, t).
func (f PolicyFunc) Run(ctx context.Context, t Trial) (Outcome, error) { return f(ctx, t) }
