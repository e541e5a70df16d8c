package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PACER_CONFIG is set
//  3. env (prefix PACER_)
//
// The result is validated before being returned; a validation failure means
// no engine may start.
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("PACER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: PACER_HARD_CPS_LIMIT, PACER_TARGET_CPS_LO, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("PACER_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "pacer_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every documented range and ordering invariant.
func (c *Config) Validate() error {
	if c.HardCPSLimit <= 0 {
		return fmt.Errorf("%w: hard_cps_limit must be > 0, got %v", ErrHardLimit, c.HardCPSLimit)
	}
	if c.TargetCPSLo <= 0 || c.TargetCPSHi < c.TargetCPSLo {
		return fmt.Errorf("%w: need 0 < lo <= hi, got [%v, %v]", ErrTargetRange, c.TargetCPSLo, c.TargetCPSHi)
	}
	if c.TargetCPSHi > c.HardCPSLimit {
		return fmt.Errorf("%w: hi %v exceeds hard_cps_limit %v", ErrTargetRange, c.TargetCPSHi, c.HardCPSLimit)
	}
	if c.SensMultiplier <= 0 || c.SensMultiplier > 1 {
		return fmt.Errorf("%w: sens_multiplier must be in (0, 1], got %v", ErrSensMultiplier, c.SensMultiplier)
	}
	if c.EngageFraction <= 0 || c.EngageFraction > 1 {
		return fmt.Errorf("%w: engage_fraction must be in (0, 1], got %v", ErrThresholds, c.EngageFraction)
	}
	if c.DisengageFraction <= 0 || c.DisengageFraction >= c.EngageFraction {
		return fmt.Errorf("%w: disengage_fraction must be in (0, engage_fraction), got %v",
			ErrThresholds, c.DisengageFraction)
	}
	if c.EngageDwellMS < 0 || c.DisengageDwellMS < 0 {
		return fmt.Errorf("%w: dwell times must be >= 0", ErrDurations)
	}
	if c.RampUpMS <= 0 || c.RampDownMS <= 0 {
		return fmt.Errorf("%w: ramp durations must be > 0", ErrDurations)
	}
	if c.LookbackMS <= 0 {
		return fmt.Errorf("%w: lookback_ms must be > 0", ErrDurations)
	}
	// A single landing click inside the window must already be admissible,
	// otherwise no synthetic click can ever comply with the target range.
	if c.TargetCPSHi*c.Lookback().Seconds() < 1 {
		return fmt.Errorf("%w: target hi %v is unreachable within a %v window",
			ErrTargetRange, c.TargetCPSHi, c.Lookback())
	}
	if c.ActivityHorizonMS <= 0 || c.BurstThresholdMS < 0 {
		return fmt.Errorf("%w: activity/burst horizons out of range", ErrDurations)
	}
	if c.HoldMinMS <= 0 || c.HoldMaxMS < c.HoldMinMS {
		return fmt.Errorf("%w: need 0 < hold_min_ms <= hold_max_ms, got [%d, %d]",
			ErrJitterBounds, c.HoldMinMS, c.HoldMaxMS)
	}
	if c.TickIntervalMS <= 0 {
		return fmt.Errorf("%w: tick_interval_ms must be > 0", ErrDurations)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be > 0", ErrQueue)
	}
	if c.MultiplierEpsilon < 0 {
		return fmt.Errorf("%w: multiplier_epsilon must be >= 0", ErrQueue)
	}
	if len(c.TriggerButtons) == 0 {
		return fmt.Errorf("%w: at least one trigger button is required", ErrTriggers)
	}
	seen := make(map[string]struct{}, len(c.TriggerButtons))
	for _, t := range c.TriggerButtons {
		if t == "" {
			return fmt.Errorf("%w: empty trigger name", ErrTriggers)
		}
		if _, dup := seen[t]; dup {
			return fmt.Errorf("%w: duplicate trigger %q", ErrTriggers, t)
		}
		seen[t] = struct{}{}
	}
	return nil
}
