// Package ingest defines the boundary through which raw station data reaches
// the reconciliation engine.
package ingest

import (
	"context"
	"time"

	"github.com/kilianp07/dockflow/core/model"
)

// StationDirectory lists the stations active on a reference date.
type StationDirectory interface {
	Stations(ctx context.Context, asOf time.Time) ([]model.Station, error)
}

// SnapshotSource returns a station's occupancy snapshots in chronological
// order, normalised to a single time zone.
type SnapshotSource interface {
	Snapshots(ctx context.Context, st model.Station) ([]model.Snapshot, error)
}

// RebalanceSource returns the operator moves of a station, netted per
// interval and timestamped in UTC.
type RebalanceSource interface {
	RebalanceMoves(ctx context.Context, stationID int64, interval time.Duration) ([]model.RebalanceMove, error)
}

// Source groups every ingestion capability.
type Source interface {
	StationDirectory
	SnapshotSource
	RebalanceSource
}
