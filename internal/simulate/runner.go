package simulate

import (
	"context"
	"fmt"
	"time"

	"github.com/tsachs/pacer/internal/adapters/sink"
	"github.com/tsachs/pacer/internal/config"
	"github.com/tsachs/pacer/internal/engine"
	"github.com/tsachs/pacer/pkg/logger"
)

// settleTime gives the engine room to fire pending releases and ramp the
// damper back after the generator stops clicking.
const settleTime = 1500 * time.Millisecond

// Run drives a full in-process simulation: a live engine, a scripted real
// click stream, and post-run verification of the output.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Named("clicksim")
	stats := &Stats{StartTime: time.Now()}

	ecfg := config.New()
	ecfg.TriggerButtons = []string{cfg.Trigger}
	if err := ecfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	stats.MultiplierFloor = ecfg.SensMultiplier

	clicks := sink.NewCollector()
	sens := sink.NewCollector()
	eng := engine.New(ecfg,
		engine.WithClickSink(clicks),
		engine.WithSensitivitySink(sens),
		engine.WithInjectionSeed(cfg.Seed),
	)

	log.Info(ctx, "starting simulation",
		logger.Duration("duration", cfg.Duration),
		logger.Float64("real_cps", cfg.RealCPS),
		logger.Float64("spike_cps", cfg.SpikeCPS),
		logger.String("trigger", cfg.Trigger),
		logger.Int("seed", int(cfg.Seed)),
	)

	if err := eng.Start(ctx); err != nil {
		return nil, fmt.Errorf("engine start: %w", err)
	}

	real, err := generate(ctx, cfg, eng.Queue())
	if err != nil {
		eng.Stop()
		return nil, fmt.Errorf("click generation: %w", err)
	}
	stats.RealPresses = len(real)

	// Let in-flight releases fire and the damper decay before stopping.
	select {
	case <-ctx.Done():
	case <-time.After(settleTime):
	}
	stats.DroppedEvents = eng.Queue().Dropped()
	eng.Stop()

	stats.SyntheticPresses = len(clicks.Presses())
	stats.SyntheticClicks = len(clicks.Clicks())
	if ms := sens.Multipliers(); len(ms) > 0 {
		stats.FinalMultiplier = ms[len(ms)-1]
	} else {
		stats.FinalMultiplier = 1.0
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	if err := verify(ctx, ecfg, real, clicks, stats); err != nil {
		return stats, fmt.Errorf("verification: %w", err)
	}

	log.Info(ctx, "simulation completed",
		logger.Int("real_presses", stats.RealPresses),
		logger.Int("synthetic_presses", stats.SyntheticPresses),
		logger.Int("max_window_presses", stats.MaxWindowPresses),
		logger.Float64("final_multiplier", stats.FinalMultiplier),
		logger.Duration("took", stats.Duration),
	)
	return stats, nil
}
