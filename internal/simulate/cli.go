package simulate

import (
	"flag"
	"fmt"
	"os"

	"github.com/tsachs/pacer/pkg/logger"
)

// ParseFlags builds a simulation config from command-line flags.
func ParseFlags(args []string) (*Config, error) {
	cfg := NewConfig()
	fs := flag.NewFlagSet("clicksim", flag.ContinueOnError)
	fs.DurationVar(&cfg.Duration, "duration", cfg.Duration, "simulated clicking time")
	fs.Float64Var(&cfg.RealCPS, "cps", cfg.RealCPS, "baseline real click rate")
	fs.Float64Var(&cfg.SpikeCPS, "spike-cps", cfg.SpikeCPS, "click rate during the spike segment (0 disables)")
	fs.DurationVar(&cfg.SpikeStart, "spike-start", cfg.SpikeStart, "offset of the spike segment")
	fs.DurationVar(&cfg.SpikeLen, "spike-len", cfg.SpikeLen, "length of the spike segment")
	fs.StringVar(&cfg.Trigger, "trigger", cfg.Trigger, "trigger button to click")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "seed for injection jitter")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}
	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %s", cfg.Duration)
	}
	if cfg.RealCPS <= 0 {
		return nil, fmt.Errorf("cps must be positive, got %v", cfg.RealCPS)
	}
	return cfg, nil
}

// SetupLogging initializes the logger at the verbosity the config asks for.
func SetupLogging(cfg *Config) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	if cfg.Verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the clicksim tool.
func ShowHelp() {
	os.Stdout.WriteString(`clicksim - in-process click shaping simulator
=============================================

Runs the pacing engine against a scripted real click stream and verifies
the output: the hard rate ceiling holds at every synthetic press, and
every synthetic press gets exactly one release.

Usage:
  clicksim [options]

Options:
  -duration duration
        simulated clicking time (default 3s)
  -cps float
        baseline real click rate (default 10)
  -spike-cps float
        click rate during the spike segment, 0 disables (default 0)
  -spike-start duration
        offset of the spike segment
  -spike-len duration
        length of the spike segment
  -trigger string
        trigger button to click (default "left")
  -seed int
        seed for injection jitter (default 1)
  -verbose
        enable verbose logging

Examples:
  # Steady under-target clicking, expect boosting into the target range
  clicksim -cps 10 -duration 5s

  # Spike above the engage threshold, expect damping and no boosting
  clicksim -cps 10 -spike-cps 22 -spike-start 1s -spike-len 2s
`)
}
