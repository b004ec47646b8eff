package worker

import "github.com/andrescamacho/idlecolony-go/internal/domain/shared"

// Config tunes the worker simulation
type Config struct {
	// Home is the drop-off point every worker returns to
	Home shared.Position `yaml:"home" json:"home"`

	// ArrivalEpsilon is the distance at which a walk counts as arrived
	ArrivalEpsilon float64 `yaml:"arrival_epsilon" json:"arrival_epsilon" validate:"gt=0"`

	// BlockedPollInterval is how often (seconds) a blocked worker re-checks its target
	BlockedPollInterval float64 `yaml:"blocked_poll_interval" json:"blocked_poll_interval" validate:"gt=0"`

	// MaxJitter bounds the per-cycle deposit offset (seconds)
	MaxJitter float64 `yaml:"max_jitter" json:"max_jitter" validate:"gte=0"`

	// MaxSpeedMultiplier caps the aggregate activity speed
	MaxSpeedMultiplier float64 `yaml:"max_speed_multiplier" json:"max_speed_multiplier" validate:"gt=0"`
}

// DefaultConfig returns the standard simulation tuning
func DefaultConfig() Config {
	return Config{
		Home:                shared.NewPosition(0, 0),
		ArrivalEpsilon:      5,
		BlockedPollInterval: 1,
		MaxJitter:           0.5,
		MaxSpeedMultiplier:  50,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ArrivalEpsilon <= 0 {
		c.ArrivalEpsilon = d.ArrivalEpsilon
	}
	if c.BlockedPollInterval <= 0 {
		c.BlockedPollInterval = d.BlockedPollInterval
	}
	if c.MaxJitter < 0 {
		c.MaxJitter = 0
	}
	if c.MaxSpeedMultiplier <= 0 {
		c.MaxSpeedMultiplier = d.MaxSpeedMultiplier
	}
	return c
}
