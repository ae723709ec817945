package reconcile

import "errors"

var (
	// ErrMissingRebalanceData is returned when rebalance correction is
	// requested but the station has no rebalance moves.
	ErrMissingRebalanceData = errors.New("missing rebalance data")
	// ErrUnorderedSnapshots indicates snapshots are not in chronological order.
	ErrUnorderedSnapshots = errors.New("snapshots not ordered by timestamp")
	// ErrNegativeCount indicates a snapshot reports a negative vehicle count.
	ErrNegativeCount = errors.New("negative vehicle count")
	// ErrInvalidInterval is returned for a non-positive bucket width.
	ErrInvalidInterval = errors.New("interval must be positive")
)
