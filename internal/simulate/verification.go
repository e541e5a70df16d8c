package simulate

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tsachs/pacer/internal/adapters/sink"
	"github.com/tsachs/pacer/internal/config"
	"github.com/tsachs/pacer/internal/domain/model"
	"github.com/tsachs/pacer/pkg/logger"
)

// verify checks the engine's output against its contract: no synthetic
// press may land in a lookback window already at the hard budget, and
// every synthetic press must have a matching release.
func verify(ctx context.Context, ecfg *config.Config, real []model.ClickEvent, clicks *sink.Collector, stats *Stats) error {
	log := logger.Named("clicksim.verify")

	synthetic := clicks.Presses()
	merged := make([]model.ClickEvent, 0, len(real)+len(synthetic))
	merged = append(merged, real...)
	merged = append(merged, synthetic...)
	sort.Slice(merged, func(i, j int) bool { return merged[i].At.Before(merged[j].At) })

	lookback := ecfg.Lookback()
	budget := int(math.Floor(ecfg.HardCPSLimit * lookback.Seconds()))

	// Two-pointer sweep: for each press, the count of presses in the
	// half-open window (At-lookback, At].
	maxWindow := 0
	lo := 0
	for i, p := range merged {
		for !merged[lo].At.After(p.At.Add(-lookback)) {
			lo++
		}
		count := i - lo + 1
		if count > maxWindow {
			maxWindow = count
		}
		if p.Synthetic && count > budget {
			return fmt.Errorf("synthetic press at %s lands in a window of %d presses, budget %d",
				p.At.Format(time.RFC3339Nano), count, budget)
		}
	}
	stats.MaxWindowPresses = maxWindow

	if err := verifyPairing(synthetic, clicks.Clicks()); err != nil {
		return err
	}

	log.Info(ctx, "output verified",
		logger.Int("merged_presses", len(merged)),
		logger.Int("max_window_presses", maxWindow),
		logger.Int("hard_budget", budget),
	)
	return nil
}

// verifyPairing checks that each synthetic press is followed by exactly
// one release carrying the same ID.
func verifyPairing(presses, all []model.ClickEvent) error {
	releases := make(map[string]int)
	for _, ev := range all {
		if ev.Kind == model.Release {
			releases[ev.ID]++
		}
	}
	for _, p := range presses {
		if n := releases[p.ID]; n != 1 {
			return fmt.Errorf("synthetic press %s has %d releases, want exactly 1", p.ID, n)
		}
	}
	return nil
}
