package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/dockflow/core/simulate"
)

// SimulateConfig controls the Monte Carlo simulator.
type SimulateConfig struct {
	Trials     int           `json:"trials"`
	Seed       uint64        `json:"seed"`
	Resolution time.Duration `json:"resolution"`
	Workers    int           `json:"workers"`
}

// SetDefaults applies sane defaults.
func (c *SimulateConfig) SetDefaults() {
	if c.Trials == 0 {
		c.Trials = simulate.DefaultTrials
	}
	if c.Resolution == 0 {
		c.Resolution = simulate.DefaultResolution
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
}

// Validate checks mandatory fields.
func (c SimulateConfig) Validate() error {
	if c.Trials < 0 {
		return fmt.Errorf("negative trials %d", c.Trials)
	}
	if c.Resolution <= 0 {
		return fmt.Errorf("resolution must be positive, got %s", c.Resolution)
	}
	if c.Workers < 0 {
		return fmt.Errorf("negative workers %d", c.Workers)
	}
	return nil
}
