package demand

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyRecords is returned when there is nothing to fit.
	ErrEmptyRecords = errors.New("no reconciled records")
	// ErrZeroResponse is returned when a response never records an event,
	// in which case no finite maximum-likelihood estimate exists.
	ErrZeroResponse = errors.New("response has no events")
	// ErrDegenerateDesign indicates a rank-deficient design matrix.
	ErrDegenerateDesign = errors.New("design matrix is rank deficient")
	// ErrUnknownLevel is returned for a category level absent from the basis.
	ErrUnknownLevel = errors.New("level not in basis")
	// ErrNotConverged is returned when the likelihood maximisation does not
	// converge within the iteration limit.
	ErrNotConverged = errors.New("poisson fit did not converge")
)

// DegenerateError reports which station produced a rank-deficient design.
type DegenerateError struct {
	StationID int64
	Rank      int
	Columns   int
}

func (e *DegenerateError) Error() string {
	return fmt.Sprintf("station %d: %s (rank %d < %d columns)", e.StationID, ErrDegenerateDesign, e.Rank, e.Columns)
}

// Is makes errors.Is(err, ErrDegenerateDesign) match.
func (e *DegenerateError) Is(target error) bool { return target == ErrDegenerateDesign }
