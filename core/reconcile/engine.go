package reconcile

import (
	"fmt"
	"time"

	"github.com/kilianp07/dockflow/core/logger"
	"github.com/kilianp07/dockflow/core/model"
)

// DefaultInterval is the bucket width used when none is configured.
const DefaultInterval = time.Hour

// Engine reconciles the snapshots of one station at a time. It holds no
// state between calls and is safe for concurrent use across stations.
type Engine struct {
	Interval time.Duration
	// Location is the time zone snapshots are expressed in and in which
	// month, hour and weekday features are derived. Defaults to UTC.
	Location *time.Location
	Logger   logger.Logger
}

// NewEngine returns an Engine with the provided interval and location.
func NewEngine(interval time.Duration, loc *time.Location, log logger.Logger) Engine {
	return Engine{Interval: interval, Location: loc, Logger: log}
}

// Reconcile builds one IntervalRecord per bucket between the first and the
// last observed delta. Fewer than two snapshots yield no records. The mode
// is always honoured: Rebalanced fails with ErrMissingRebalanceData unless at
// least one move falls in a bucket of the snapshot window. Buckets follow the
// wall clock of Location, so daily buckets start at local midnight.
func (e Engine) Reconcile(stationID int64, mode model.RebalanceMode, snaps []model.Snapshot, moves []model.RebalanceMove) ([]model.IntervalRecord, error) {
	log := logger.OrNop(e.Logger)
	step := e.Interval
	if step <= 0 {
		return nil, ErrInvalidInterval
	}
	loc := e.Location
	if loc == nil {
		loc = time.UTC
	}
	tick := time.Now()
	log.Debugw("reconcile start", map[string]any{"station_id": stationID, "mode": mode.Tag(), "snapshots": len(snaps)})

	if err := validate(snaps); err != nil {
		return nil, fmt.Errorf("station %d: %w", stationID, err)
	}
	if len(snaps) < 2 {
		return []model.IntervalRecord{}, nil
	}
	if mode == model.Rebalanced && len(moves) == 0 {
		return nil, fmt.Errorf("station %d: %w", stationID, ErrMissingRebalanceData)
	}

	from := bucket(snaps[1].Timestamp, step, loc)
	to := bucket(snaps[len(snaps)-1].Timestamp, step, loc)

	var arrivals, departures []int
	var grid series
	if mode == model.Rebalanced {
		var earliest time.Time
		for _, m := range moves {
			b := bucket(m.Timestamp, step, loc)
			if b.Before(from) || b.After(to) {
				continue
			}
			if earliest.IsZero() || b.Before(earliest) {
				earliest = b
			}
		}
		if earliest.IsZero() {
			return nil, fmt.Errorf("station %d: %w: no move between %s and %s", stationID, ErrMissingRebalanceData,
				snaps[0].Timestamp.Format(time.RFC3339), snaps[len(snaps)-1].Timestamp.Format(time.RFC3339))
		}
		from = earliest
		grid = newSeries(from, to, step, loc)
		arrivals, departures = e.rebalanced(grid, snaps, moves)
	} else {
		grid = newSeries(from, to, step, loc)
		arrivals, departures = e.organic(grid, snaps)
	}

	recs := make([]model.IntervalRecord, 0, grid.len())
	for i := 0; i < grid.len(); i++ {
		start, ok := grid.at(i)
		if !ok && arrivals[i] == 0 && departures[i] == 0 {
			// wall-clock hour skipped by a daylight saving transition
			continue
		}
		recs = append(recs, model.IntervalRecord{
			Start:      start,
			Arrivals:   arrivals[i],
			Departures: departures[i],
			Month:      int(start.Month()),
			Hour:       start.Hour(),
			Weekday:    model.IsWeekday(start),
		})
	}
	log.Debugw("reconcile end", map[string]any{"station_id": stationID, "records": len(recs), "duration": time.Since(tick).Seconds()})
	return recs, nil
}

// organic splits the deltas by sign and sums them per bucket.
func (e Engine) organic(grid series, snaps []model.Snapshot) ([]int, []int) {
	pos, neg := splitDeltas(grid, snaps)
	for i := range neg.vals {
		neg.vals[i] = -neg.vals[i]
	}
	return pos.vals, neg.vals
}

// rebalanced applies operator moves to the bucketed deltas. Vehicles removed
// by the operator offset arrivals, vehicles added offset departures. A bucket
// whose corrected total changes sign is counted in the opposite category.
func (e Engine) rebalanced(grid series, snaps []model.Snapshot, moves []model.RebalanceMove) ([]int, []int) {
	pos, neg := splitDeltas(grid, snaps)

	net := grid.like()
	for _, m := range moves {
		net.add(m.Timestamp, m.Delta)
	}

	arrivals := make([]int, grid.len())
	departures := make([]int, grid.len())
	for i := range net.vals {
		p, n := pos.vals[i], neg.vals[i]
		if r := net.vals[i]; r < 0 {
			p += r
		} else {
			n += r
		}
		positive, negative := 0, 0
		if p > 0 {
			positive += p
		} else {
			negative += p
		}
		if n < 0 {
			negative += n
		} else {
			positive += n
		}
		arrivals[i] = positive
		departures[i] = -negative
	}
	return arrivals, departures
}

// splitDeltas returns the per-bucket sum of positive deltas and of negative
// deltas. The first snapshot carries no delta.
func splitDeltas(grid series, snaps []model.Snapshot) (series, series) {
	pos, neg := grid.like(), grid.like()
	for i := 1; i < len(snaps); i++ {
		d := snaps[i].Available - snaps[i-1].Available
		switch {
		case d > 0:
			pos.add(snaps[i].Timestamp, d)
		case d < 0:
			neg.add(snaps[i].Timestamp, d)
		}
	}
	return pos, neg
}

func validate(snaps []model.Snapshot) error {
	for i, s := range snaps {
		if s.Available < 0 {
			return fmt.Errorf("%w at %s", ErrNegativeCount, s.Timestamp.Format(time.RFC3339))
		}
		if i > 0 && s.Timestamp.Before(snaps[i-1].Timestamp) {
			return fmt.Errorf("%w at %s", ErrUnorderedSnapshots, s.Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}
