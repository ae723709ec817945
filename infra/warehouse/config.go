package warehouse

import (
	"errors"
	"fmt"
	"time"
)

// Default queries target the bundled sqlite schema. Named parameters
// (:as_of, :station_id, :latitude, :longitude, :interval_seconds) are bound
// when the query references them.
const (
	DefaultStationListQuery = `SELECT station_id, name, latitude, longitude, capacity
        FROM stations
        WHERE online_date <= :as_of AND (offline_date IS NULL OR offline_date >= :as_of)
        ORDER BY station_id`
	DefaultSnapshotQuery = `SELECT timestamp, available
        FROM station_status
        WHERE station_id = :station_id
        ORDER BY timestamp`
	DefaultRebalanceQuery = `SELECT timestamp, delta
        FROM rebalance_moves
        WHERE station_id = :station_id
        ORDER BY timestamp`
)

// Config describes the warehouse connection and the queries run against it.
type Config struct {
	Driver           string `json:"driver"`
	DSN              string `json:"dsn"`
	StationListQuery string `json:"station_list_query"`
	SnapshotQuery    string `json:"snapshot_query"`
	RebalanceQuery   string `json:"rebalance_query"`
	// TimeoutSeconds bounds each query; zero disables the bound.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// SetDefaults applies the sqlite driver and the default queries.
func (c *Config) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "sqlite"
	}
	if c.StationListQuery == "" {
		c.StationListQuery = DefaultStationListQuery
	}
	if c.SnapshotQuery == "" {
		c.SnapshotQuery = DefaultSnapshotQuery
	}
	if c.RebalanceQuery == "" {
		c.RebalanceQuery = DefaultRebalanceQuery
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.DSN == "" {
		return errors.New("warehouse: dsn is required")
	}
	if c.Driver != "sqlite" {
		return fmt.Errorf("warehouse: unsupported driver %s", c.Driver)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("warehouse: negative timeout %d", c.TimeoutSeconds)
	}
	return nil
}

func (c Config) timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
