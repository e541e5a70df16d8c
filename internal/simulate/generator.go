package simulate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/tsachs/pacer/internal/adapters/mq/queue"
	"github.com/tsachs/pacer/internal/domain/model"
	"github.com/tsachs/pacer/pkg/logger"
)

// realHold is the press-to-release gap of a simulated human click. Kept
// shorter than any scripted inter-press interval so releases land before
// the next press.
const realHold = 12 * time.Millisecond

// clickPhase is one segment of the scripted clicking pattern.
type clickPhase struct {
	cps float64
	dur time.Duration
}

// phases splits the run into baseline / spike / baseline segments. With
// no spike configured the whole run is one baseline segment.
func phases(cfg *Config) []clickPhase {
	if cfg.SpikeCPS <= 0 || cfg.SpikeLen <= 0 {
		return []clickPhase{{cps: cfg.RealCPS, dur: cfg.Duration}}
	}
	out := []clickPhase{}
	if cfg.SpikeStart > 0 {
		out = append(out, clickPhase{cps: cfg.RealCPS, dur: cfg.SpikeStart})
	}
	out = append(out, clickPhase{cps: cfg.SpikeCPS, dur: cfg.SpikeLen})
	if rest := cfg.Duration - cfg.SpikeStart - cfg.SpikeLen; rest > 0 {
		out = append(out, clickPhase{cps: cfg.RealCPS, dur: rest})
	}
	return out
}

// generate feeds scripted real press/release pairs into the queue, paced
// by a token-bucket limiter at each segment's rate. Returns the presses
// produced, for post-run verification against the engine's output.
func generate(ctx context.Context, cfg *Config, q *queue.InMemoryQueue) ([]model.ClickEvent, error) {
	log := logger.Named("clicksim.gen")
	trigger := model.Trigger(cfg.Trigger)
	var presses []model.ClickEvent

	var pendingRelease *model.ClickEvent
	flush := func() {
		if pendingRelease != nil {
			q.Enqueue(*pendingRelease)
			pendingRelease = nil
		}
	}

	for _, p := range phases(cfg) {
		if p.cps <= 0 || p.dur <= 0 {
			continue
		}
		limiter := rate.NewLimiter(rate.Limit(p.cps), 1)
		deadline := time.Now().Add(p.dur)
		log.Debug(ctx, "entering click phase",
			logger.Float64("cps", p.cps),
			logger.Duration("dur", p.dur),
		)
		for time.Now().Before(deadline) {
			if err := limiter.Wait(ctx); err != nil {
				flush()
				return presses, err
			}
			flush()
			now := time.Now()
			id := uuid.New().String()
			press := model.ClickEvent{Trigger: trigger, Kind: model.Press, At: now, ID: id}
			q.Enqueue(press)
			presses = append(presses, press)
			rel := model.ClickEvent{Trigger: trigger, Kind: model.Release, At: now.Add(realHold), ID: id}
			pendingRelease = &rel
		}
	}
	flush()
	return presses, nil
}
