package config

import "fmt"

// SentryConfig enables capture of per-station failures. An empty DSN
// disables it.
type SentryConfig struct {
	DSN         string `json:"dsn"`
	Environment string `json:"environment"`
	Release     string `json:"release"`
	ServerName  string `json:"server_name"`
	// SampleRate is the share of captured errors actually sent.
	SampleRate float64 `json:"sample_rate"`
	// FlushSeconds bounds how long the end of a batch waits for delivery.
	FlushSeconds int `json:"flush_seconds"`
}

// SetDefaults sends every error and waits up to two seconds on flush.
func (c *SentryConfig) SetDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = 1
	}
	if c.FlushSeconds == 0 {
		c.FlushSeconds = 2
	}
}

func (c SentryConfig) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sample_rate %v outside [0,1]", c.SampleRate)
	}
	if c.FlushSeconds < 0 {
		return fmt.Errorf("flush_seconds must not be negative")
	}
	return nil
}
