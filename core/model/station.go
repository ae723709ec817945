package model

import "time"

// Station is an entry of the station directory.
type Station struct {
	ID        int64
	Name      string
	Latitude  float64
	Longitude float64
	Capacity  int // total docks, 0 when unknown
}

// Snapshot is one observation of the vehicles present at a station.
type Snapshot struct {
	Timestamp time.Time
	Available int // vehicles available, never negative
}

// RebalanceMove is an operator-caused change of the vehicle count at a
// station. Positive deltas are vehicles added, negative deltas vehicles removed.
type RebalanceMove struct {
	Timestamp time.Time
	Delta     int
}
