package simulate

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultResolution is the sub-interval used by PoissonPolicy.
const DefaultResolution = 5 * time.Minute

// PoissonPolicy advances the station in fixed sub-intervals. Each step draws
// arrivals and departures from Poisson distributions whose rates are the
// model's per-interval rates scaled to the step length. Arrivals are applied
// before departures; occupancy stays within [0, capacity].
type PoissonPolicy struct {
	Resolution time.Duration
}

// Run implements Policy.
func (p PoissonPolicy) Run(ctx context.Context, t Trial) (Outcome, error) {
	if t.Model == nil || t.Rand == nil {
		return Outcome{}, fmt.Errorf("%w: trial needs a model and a random source", ErrInvalidTrial)
	}
	interval, err := time.ParseDuration(t.Model.Interval)
	if err != nil || interval <= 0 {
		return Outcome{}, fmt.Errorf("station %d: model interval %q: %w", t.StationID, t.Model.Interval, ErrInvalidTrial)
	}
	res := p.Resolution
	if res <= 0 {
		res = DefaultResolution
	}

	occ := t.StartingCount
	out := Outcome{Empty: occ == 0, Full: occ == t.Capacity}
	for cur := t.Start; cur.Before(t.End); cur = cur.Add(res) {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		step := res
		if rem := t.End.Sub(cur); rem < step {
			step = rem
		}
		arrRate, depRate, err := t.Model.Rates(t.Month, cur.Hour(), t.Weekday)
		if err != nil {
			return Outcome{}, err
		}
		scale := float64(step) / float64(interval)
		arrivals := draw(arrRate*scale, t)
		departures := draw(depRate*scale, t)

		occ += arrivals
		if occ >= t.Capacity {
			occ = t.Capacity
			out.Full = true
		}
		occ -= departures
		if occ <= 0 {
			occ = 0
			out.Empty = true
		}
	}
	out.Final = occ
	return out, nil
}

func draw(lambda float64, t Trial) int {
	if lambda <= 0 {
		return 0
	}
	return int(distuv.Poisson{Lambda: lambda, Src: t.Rand}.Rand())
}
