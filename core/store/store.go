package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/dockflow/core/demand"
	"github.com/kilianp07/dockflow/core/model"
)

// ErrModelNotFound is returned when no model was persisted for a station and
// rebalance mode.
var ErrModelNotFound = errors.New("model not found")

// ModelStore persists fitted demand models keyed by station and mode.
type ModelStore interface {
	Save(ctx context.Context, m *demand.Model) error
	Load(ctx context.Context, stationID int64, mode model.RebalanceMode) (*demand.Model, error)
	Close() error
}

// Key returns the name under which a model is persisted.
func Key(stationID int64, mode model.RebalanceMode) string {
	return fmt.Sprintf("poisson_results_%d_%s", stationID, mode.Tag())
}

// NotFound wraps ErrModelNotFound with the missing key.
func NotFound(stationID int64, mode model.RebalanceMode) error {
	return fmt.Errorf("%w: %s", ErrModelNotFound, Key(stationID, mode))
}
