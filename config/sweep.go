package config

import "fmt"

// SweepConfig controls the periodic health status re-derivation job.
type SweepConfig struct {
	Enabled         bool `json:"enabled"`
	IntervalMinutes int  `json:"interval_minutes"`
}

// SetDefaults applies sane defaults.
func (c *SweepConfig) SetDefaults() {
	if c.IntervalMinutes == 0 {
		c.IntervalMinutes = 15
	}
}

// Validate checks mandatory fields.
func (c SweepConfig) Validate() error {
	if c.IntervalMinutes < 1 {
		return fmt.Errorf("sweep interval must be at least one minute")
	}
	return nil
}
