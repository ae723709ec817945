package simulate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/dockflow/core/logger"
	"github.com/kilianp07/dockflow/core/model"
	"github.com/kilianp07/dockflow/core/store"
)

// DefaultTrials is the number of trials run when a request leaves it unset.
const DefaultTrials = 250

// ErrInvalidTrial is returned for requests that cannot be simulated.
var ErrInvalidTrial = errors.New("invalid simulation request")

// Request describes one station, time window and day type to simulate.
type Request struct {
	StationID     int64
	Mode          model.RebalanceMode
	Start         time.Time
	End           time.Time
	Capacity      int
	StartingCount int
	Month         int
	Weekday       bool
	Trials        int
}

// Result holds one entry per trial, in trial order.
type Result struct {
	Finals []int
	Empty  []bool
	Full   []bool
}

// Simulator loads the fitted model for a station and runs independent trials.
type Simulator struct {
	Store  store.ModelStore
	Policy Policy
	// Seed fixes the random sources. Trial i always draws from a source
	// derived from (Seed, i), so results do not depend on Workers.
	Seed    uint64
	Workers int
	Logger  logger.Logger
}

// Simulate runs req.Trials trials. The first trial failure aborts the call.
func (s *Simulator) Simulate(ctx context.Context, req Request) (Result, error) {
	log := logger.OrNop(s.Logger)
	if err := validateRequest(&req); err != nil {
		return Result{}, err
	}
	if s.Store == nil {
		return Result{}, fmt.Errorf("%w: no model store", ErrInvalidTrial)
	}
	m, err := s.Store.Load(ctx, req.StationID, req.Mode)
	if err != nil {
		return Result{}, fmt.Errorf("station %d: %w", req.StationID, err)
	}
	policy := s.Policy
	if policy == nil {
		policy = PoissonPolicy{}
	}

	tick := time.Now()
	res := Result{
		Finals: make([]int, req.Trials),
		Empty:  make([]bool, req.Trials),
		Full:   make([]bool, req.Trials),
	}
	g, gctx := errgroup.WithContext(ctx)
	workers := s.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)
	for i := 0; i < req.Trials; i++ {
		trial := Trial{
			Index:         i,
			StationID:     req.StationID,
			Start:         req.Start,
			End:           req.End,
			Capacity:      req.Capacity,
			StartingCount: req.StartingCount,
			Month:         req.Month,
			Weekday:       req.Weekday,
			Model:         m,
			Rand:          rand.New(rand.NewPCG(s.Seed, uint64(i))),
		}
		g.Go(func() error {
			out, err := policy.Run(gctx, trial)
			if err != nil {
				return fmt.Errorf("trial %d: %w", trial.Index, err)
			}
			res.Finals[trial.Index] = out.Final
			res.Empty[trial.Index] = out.Empty
			res.Full[trial.Index] = out.Full
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("station %d: %w", req.StationID, err)
	}
	log.Debugw("simulation", map[string]any{
		"station_id": req.StationID,
		"mode":       req.Mode.Tag(),
		"trials":     req.Trials,
		"duration":   time.Since(tick).Seconds(),
	})
	return res, nil
}

func validateRequest(req *Request) error {
	if req.Trials == 0 {
		req.Trials = DefaultTrials
	}
	switch {
	case req.Trials < 0:
		return fmt.Errorf("%w: trials must be positive", ErrInvalidTrial)
	case !req.End.After(req.Start):
		return fmt.Errorf("%w: end must be after start", ErrInvalidTrial)
	case req.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive", ErrInvalidTrial)
	case req.StartingCount < 0 || req.StartingCount > req.Capacity:
		return fmt.Errorf("%w: starting count %d outside [0,%d]", ErrInvalidTrial, req.StartingCount, req.Capacity)
	case req.Month < 1 || req.Month > 12:
		return fmt.Errorf("%w: month %d", ErrInvalidTrial, req.Month)
	}
	return nil
}
