package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/dockflow/core/demand"
	"github.com/kilianp07/dockflow/core/model"
)

// DefaultAsOf is the station directory reference date.
const DefaultAsOf = "2019-06-30"

// FitConfig controls reconciliation and model fitting.
type FitConfig struct {
	Interval time.Duration `json:"interval"`
	// Rebalance selects the rebalance-corrected fit.
	Rebalance     bool    `json:"rebalance"`
	Location      string  `json:"location"`
	Basis         string  `json:"basis"`
	Workers       int     `json:"workers"`
	AsOf          string  `json:"as_of"`
	MaxIterations int     `json:"max_iterations"`
	Tolerance     float64 `json:"tolerance"`
}

// SetDefaults applies sane defaults.
func (c *FitConfig) SetDefaults() {
	if c.Interval == 0 {
		c.Interval = time.Hour
	}
	if c.Location == "" {
		c.Location = "America/Chicago"
	}
	if c.Basis == "" {
		c.Basis = string(demand.ObservedBasis)
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.AsOf == "" {
		c.AsOf = DefaultAsOf
	}
}

// Validate checks mandatory fields.
func (c FitConfig) Validate() error {
	if c.Interval <= 0 || c.Interval%time.Minute != 0 {
		return fmt.Errorf("interval must be a positive whole number of minutes, got %s", c.Interval)
	}
	const day = 24 * time.Hour
	if day%c.Interval != 0 && c.Interval%day != 0 {
		return fmt.Errorf("interval %s must divide a day or be a whole number of days", c.Interval)
	}
	if _, err := c.Loc(); err != nil {
		return err
	}
	if c.Basis != string(demand.ObservedBasis) && c.Basis != string(demand.FullBasis) {
		return fmt.Errorf("unknown basis %s", c.Basis)
	}
	if c.Workers < 0 {
		return fmt.Errorf("negative workers %d", c.Workers)
	}
	if _, err := c.AsOfDate(); err != nil {
		return err
	}
	if c.MaxIterations < 0 || c.Tolerance < 0 {
		return fmt.Errorf("max_iterations and tolerance must not be negative")
	}
	return nil
}

// Loc loads the configured time zone.
func (c FitConfig) Loc() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, fmt.Errorf("location %q: %w", c.Location, err)
	}
	return loc, nil
}

// AsOfDate parses AsOf as a calendar date.
func (c FitConfig) AsOfDate() (time.Time, error) {
	t, err := time.Parse("2006-01-02", c.AsOf)
	if err != nil {
		return time.Time{}, fmt.Errorf("as_of %q: %w", c.AsOf, err)
	}
	return t, nil
}

// Mode returns the rebalance mode selected by Rebalance.
func (c FitConfig) Mode() model.RebalanceMode {
	return model.ModeFromBool(c.Rebalance)
}
