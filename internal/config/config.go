// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load() layers defaults, optional YAML file, and env vars.
// - All invariants are checked eagerly by Validate; an invalid configuration
//   is a fatal startup error, never a runtime fallback.
package config

import (
	"time"

	"github.com/tsachs/pacer/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the ops HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr"`

	// HardCPSLimit is the ceiling the merged real+synthetic click rate may
	// never exceed, under any circumstances.
	HardCPSLimit float64 `koanf:"hard_cps_limit"`

	// TargetCPSLo and TargetCPSHi bound the window injection shapes the
	// observed rate toward. lo <= hi <= HardCPSLimit.
	TargetCPSLo float64 `koanf:"target_cps_lo"`
	TargetCPSHi float64 `koanf:"target_cps_hi"`

	// SensMultiplier is the suppressed sensitivity level in (0, 1].
	SensMultiplier float64 `koanf:"sens_multiplier"`

	// TriggerButtons lists the monitored input sources.
	TriggerButtons []string `koanf:"trigger_buttons"`

	// EngageFraction and DisengageFraction set the damper thresholds as
	// fractions of HardCPSLimit. Disengage must sit below engage (hysteresis).
	EngageFraction    float64 `koanf:"engage_fraction"`
	DisengageFraction float64 `koanf:"disengage_fraction"`

	// EngageDwellMS and DisengageDwellMS debounce threshold crossings.
	EngageDwellMS    int `koanf:"engage_dwell_ms"`
	DisengageDwellMS int `koanf:"disengage_dwell_ms"`

	// RampUpMS is the time to ramp from 1.0 down to SensMultiplier;
	// RampDownMS the time to recover back to 1.0.
	RampUpMS   int `koanf:"ramp_up_ms"`
	RampDownMS int `koanf:"ramp_down_ms"`

	// LookbackMS is the sliding-window length used for rate estimation.
	LookbackMS int `koanf:"lookback_ms"`

	// ActivityHorizonMS bounds how long after the last real press a trigger
	// is still considered actively clicked.
	ActivityHorizonMS int `koanf:"activity_horizon_ms"`

	// BurstThresholdMS is the max gap between two real presses that counts
	// as a burst; injection only assists once a burst is seen.
	BurstThresholdMS int `koanf:"burst_threshold_ms"`

	// HoldMinMS and HoldMaxMS bound the randomized synthetic hold duration.
	HoldMinMS int `koanf:"hold_min_ms"`
	HoldMaxMS int `koanf:"hold_max_ms"`

	// TickIntervalMS sets the control loop period.
	TickIntervalMS int `koanf:"tick_interval_ms"`

	// QueueSize bounds the input event queue.
	QueueSize int `koanf:"queue_size"`

	// MultiplierEpsilon suppresses sensitivity updates smaller than this.
	MultiplierEpsilon float64 `koanf:"multiplier_epsilon"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9090",
		HardCPSLimit:      18,
		TargetCPSLo:       15,
		TargetCPSHi:       17,
		SensMultiplier:    0.5,
		TriggerButtons:    []string{"left", "right"},
		EngageFraction:    0.55,
		DisengageFraction: 0.40,
		EngageDwellMS:     60,
		DisengageDwellMS:  60,
		RampUpMS:          40,
		RampDownMS:        15,
		LookbackMS:        1000,
		ActivityHorizonMS: 100,
		BurstThresholdMS:  150,
		HoldMinMS:         10,
		HoldMaxMS:         20,
		TickIntervalMS:    4,
		QueueSize:         4096,
		MultiplierEpsilon: 0.001,
	}
}

// Duration accessors. Millisecond fields stay ints for koanf/env ergonomics;
// everything downstream works in time.Duration.

func (c *Config) EngageDwell() time.Duration { return time.Duration(c.EngageDwellMS) * time.Millisecond }
func (c *Config) DisengageDwell() time.Duration { return time.Duration(c.DisengageDwellMS) * time.Millisecond }
func (c *Config) RampUp() time.Duration { return time.Duration(c.RampUpMS) * time.Millisecond }
func (c *Config) RampDown() time.Duration { return time.Duration(c.RampDownMS) * time.Millisecond }
func (c *Config) Lookback() time.Duration { return time.Duration(c.LookbackMS) * time.Millisecond }
func (c *Config) ActivityHorizon() time.Duration { return time.Duration(c.ActivityHorizonMS) * time.Millisecond }
func (c *Config) BurstThreshold() time.Duration { return time.Duration(c.BurstThresholdMS) * time.Millisecond }
func (c *Config) HoldMin() time.Duration { return time.Duration(c.HoldMinMS) * time.Millisecond }
func (c *Config) HoldMax() time.Duration { return time.Duration(c.HoldMaxMS) * time.Millisecond }
func (c *Config) TickInterval() time.Duration { return time.Duration(c.TickIntervalMS) * time.Millisecond }

// Triggers returns the configured trigger set as domain identities.
func (c *Config) Triggers() []model.Trigger {
	out := make([]model.Trigger, len(c.TriggerButtons))
	for i, t := range c.TriggerButtons {
		out[i] = model.Trigger(t)
	}
	return out
}
