package ingest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kilianp07/dockflow/core/model"
)

// MemorySource serves fixture data. It is read-only once built.
type MemorySource struct {
	StationList []model.Station
	// Active optionally bounds the period a station is listed for.
	Active  map[int64][2]time.Time
	Snaps   map[int64][]model.Snapshot
	Moves   map[int64][]model.RebalanceMove
	Failing map[int64]error
}

// Stations returns the stations active at asOf, ordered by id.
func (m *MemorySource) Stations(_ context.Context, asOf time.Time) ([]model.Station, error) {
	var out []model.Station
	for _, st := range m.StationList {
		if w, ok := m.Active[st.ID]; ok && (asOf.Before(w[0]) || (!w[1].IsZero() && asOf.After(w[1]))) {
			continue
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Snapshots returns a copy of the station's snapshots.
func (m *MemorySource) Snapshots(_ context.Context, st model.Station) ([]model.Snapshot, error) {
	if err, ok := m.Failing[st.ID]; ok {
		return nil, fmt.Errorf("station %d: %w", st.ID, err)
	}
	return append([]model.Snapshot(nil), m.Snaps[st.ID]...), nil
}

// RebalanceMoves returns a copy of the station's moves.
func (m *MemorySource) RebalanceMoves(_ context.Context, stationID int64, _ time.Duration) ([]model.RebalanceMove, error) {
	return append([]model.RebalanceMove(nil), m.Moves[stationID]...), nil
}
