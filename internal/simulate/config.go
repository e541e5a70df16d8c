package simulate

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	Duration   time.Duration // total simulated clicking time
	RealCPS    float64       // baseline real click rate
	SpikeCPS   float64       // click rate during the spike segment, 0 disables
	SpikeStart time.Duration // offset of the spike segment
	SpikeLen   time.Duration // length of the spike segment
	Trigger    string        // trigger button to click
	Seed       int64         // seed for the engine's injection jitter
	Verbose    bool          // enable verbose logging
}

// Stats holds the outcome of a simulation run.
type Stats struct {
	RealPresses      int
	SyntheticPresses int
	SyntheticClicks  int
	DroppedEvents    uint64
	MaxWindowPresses int
	FinalMultiplier  float64
	MultiplierFloor  float64
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}

// NewConfig returns simulation defaults: three seconds of steady clicking
// below the target floor, no spike.
func NewConfig() *Config {
	return &Config{
		Duration: 3 * time.Second,
		RealCPS:  10,
		Trigger:  "left",
		Seed:     1,
	}
}
