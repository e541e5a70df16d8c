// Package engine hosts the controller: the single-threaded tick loop that
// wires real input events into the rate estimator, advances the damper,
// schedules and fires synthetic clicks, and emits output events.
//
// Ordering guarantee: within one tick the estimator is updated with every
// real event received since the previous tick before the damper or the
// injector read a rate — no component ever consumes a stale estimate
// against fresh events.
package engine

import (
	"container/heap"
	"context"
	"math"
	"sync"
	"time"

	"github.com/tsachs/pacer/internal/adapters/mq/queue"
	"github.com/tsachs/pacer/internal/adapters/sink"
	"github.com/tsachs/pacer/internal/config"
	"github.com/tsachs/pacer/internal/domain/damper"
	"github.com/tsachs/pacer/internal/domain/inject"
	"github.com/tsachs/pacer/internal/domain/model"
	"github.com/tsachs/pacer/internal/domain/rate"
	"github.com/tsachs/pacer/pkg/logger"
	"github.com/tsachs/pacer/pkg/metrics"
)

const (
	budgetSlack = 1e-9
	// statusLogInterval paces the periodic telemetry line.
	statusLogInterval = time.Second
)

// Engine owns the control loop and all mutable core state. Everything the
// loop touches — estimator windows, damper state, pending timers — is
// mutated on the loop goroutine only; the lifecycle mutex exists for
// Start/Stop and for stats snapshots, not for data sharing.
type Engine struct {
	mu sync.Mutex

	cfg      *config.Config
	triggers map[model.Trigger]struct{}

	est      *rate.Estimator
	damper   *damper.Damper
	injector *inject.Injector
	queue    *queue.InMemoryQueue

	clicks sink.ClickSink
	sens   sink.SensitivitySink

	timers   timerHeap
	seq      uint64
	pending  map[model.Trigger]bool // a scheduled, not-yet-fired synthetic press
	reported map[model.Trigger]bool // infeasibility reported once per trigger

	maxTriggerBudget int // presses allowed per trigger window (target hi)
	maxTotalBudget   int // presses allowed in the union window (hard limit)

	lastMultiplier float64

	injected  uint64
	cancelled uint64
	deferred  uint64

	started     bool
	stopCh      chan struct{}
	done        chan struct{}
	ticksPerLog uint64
	tickCount   uint64

	log logger.Logger
}

// New constructs an engine from validated configuration. The config must
// have passed config.Validate; New does not re-check it.
func New(cfg *config.Config, opts ...Option) *Engine {
	lookbackSec := cfg.Lookback().Seconds()

	e := &Engine{
		cfg:              cfg,
		triggers:         make(map[model.Trigger]struct{}, len(cfg.TriggerButtons)),
		pending:          make(map[model.Trigger]bool),
		reported:         make(map[model.Trigger]bool),
		maxTriggerBudget: int(math.Floor(cfg.TargetCPSHi*lookbackSec + budgetSlack)),
		maxTotalBudget:   int(math.Floor(cfg.HardCPSLimit*lookbackSec + budgetSlack)),
		lastMultiplier:   1.0,
		stopCh:           make(chan struct{}),
		done:             make(chan struct{}),
		ticksPerLog:      uint64(statusLogInterval / cfg.TickInterval()),
	}
	for _, t := range cfg.Triggers() {
		e.triggers[t] = struct{}{}
	}

	e.est = rate.NewEstimator(cfg.Lookback(), cfg.Triggers())
	e.damper = damper.New(
		damper.WithThresholds(cfg.HardCPSLimit, cfg.EngageFraction, cfg.DisengageFraction),
		damper.WithDwell(cfg.EngageDwell(), cfg.DisengageDwell()),
		damper.WithRamps(cfg.RampUp(), cfg.RampDown()),
		damper.WithFloor(cfg.SensMultiplier),
		damper.WithTransitionFunc(func(from, to model.DamperPhase, _ time.Time) {
			metrics.RecordPhaseTransition(from.String(), to.String())
		}),
	)
	e.injector = inject.New(
		inject.WithTargetRange(cfg.TargetCPSLo, cfg.TargetCPSHi),
		inject.WithHardLimit(cfg.HardCPSLimit),
		inject.WithHoldRange(cfg.HoldMin(), cfg.HoldMax()),
	)
	e.queue = queue.NewInMemoryQueue(queue.WithCapacity(cfg.QueueSize))

	for _, opt := range opts {
		opt(e)
	}

	if e.log == nil {
		e.log = logger.Get().Named("engine")
	}
	if e.clicks == nil {
		e.clicks = sink.NewLogSink("click-sink")
	}
	if e.sens == nil {
		e.sens = sink.NewLogSink("sens-sink")
	}
	if e.ticksPerLog == 0 {
		e.ticksPerLog = 1
	}

	return e
}

// Queue returns the input boundary: the capture goroutine enqueues raw
// click events here.
func (e *Engine) Queue() *queue.InMemoryQueue {
	return e.queue
}

// Start launches the tick loop.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return nil
	}
	e.started = true

	e.log.Info(ctx, "starting control loop",
		logger.Duration("tick", e.cfg.TickInterval()),
		logger.Float64("hard_cps_limit", e.cfg.HardCPSLimit),
		logger.Float64("target_lo", e.cfg.TargetCPSLo),
		logger.Float64("target_hi", e.cfg.TargetCPSHi),
		logger.Int("triggers", len(e.triggers)),
	)

	go e.run(ctx)
	return nil
}

// Stop halts the tick loop and closes the input queue.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.started = false
	e.mu.Unlock()

	close(e.stopCh)
	<-e.done
	_ = e.queue.Close()
	e.log.Info(context.Background(), "control loop stopped")
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	ticker := time.NewTicker(e.cfg.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stopCh:
			return
		case now := <-ticker.C:
			start := time.Now()
			e.mu.Lock()
			e.step(ctx, now)
			e.mu.Unlock()
			metrics.RecordTickDuration(float64(time.Since(start).Microseconds()) / 1000.0)
		}
	}
}

// step is one control tick. Callers must hold e.mu.
func (e *Engine) step(ctx context.Context, now time.Time) {
	e.tickCount++

	e.drainInput(ctx)

	total := 0.0
	for t := range e.triggers {
		sample := e.est.Sample(t, now)
		total += sample.CPS
		metrics.UpdateCPS(string(sample.Trigger), sample.CPS)
	}
	metrics.UpdateTotalCPS(total)

	multiplier := e.damper.Tick(now, total)
	metrics.UpdateMultiplier(multiplier)
	metrics.UpdateDamperPhase(int(e.damper.State().Phase))
	if math.Abs(multiplier-e.lastMultiplier) > e.cfg.MultiplierEpsilon {
		e.lastMultiplier = multiplier
		metrics.RecordMultiplierUpdate()
		if err := e.sens.ApplySensitivity(ctx, multiplier); err != nil {
			e.log.Error(ctx, "sensitivity sink failed", logger.Error(err))
		}
	}

	e.planInjections(ctx, now)
	e.fireDueTimers(ctx, now)

	metrics.UpdateQueueSize(e.queue.Len())
	if e.tickCount%e.ticksPerLog == 0 {
		e.logStatus(ctx, now, total, multiplier)
	}
}

// drainInput feeds every event received since the previous tick into the
// estimator. Unknown triggers are skipped; non-monotonic timestamps are
// dropped and counted, never allowed into a window.
func (e *Engine) drainInput(ctx context.Context) {
	for {
		select {
		case ev, ok := <-e.queue.Events():
			if !ok {
				return
			}
			if _, known := e.triggers[ev.Trigger]; !known {
				e.log.Debug(ctx, "event for unmonitored trigger", logger.String("trigger", string(ev.Trigger)))
				continue
			}
			if !e.est.Observe(ev) {
				metrics.RecordOutOfOrderEvent()
				e.log.Warn(ctx, "dropped non-monotonic event",
					logger.String("trigger", string(ev.Trigger)),
					logger.Time("at", ev.At),
				)
				continue
			}
			if ev.Kind == model.Press {
				metrics.RecordClickObserved(string(ev.Trigger))
			}
		default:
			return
		}
	}
}

// planInjections asks the injector for at most one new synthetic click per
// trigger. Planning is gated on real activity: a recent press within the
// activity horizon and an observed burst, so a lone click is never
// assisted and nothing fires after the user stops.
func (e *Engine) planInjections(ctx context.Context, now time.Time) {
	for t := range e.triggers {
		if e.pending[t] {
			continue
		}
		if !e.est.Active(t, now, e.cfg.ActivityHorizon()) {
			continue
		}
		if !e.est.BurstDetected(t, e.cfg.BurstThreshold()) {
			continue
		}

		plan, err := e.injector.Plan(now, t, e.est)
		if err != nil {
			if !e.reported[t] {
				e.reported[t] = true
				metrics.RecordInjectionInfeasible(string(t))
				e.log.Error(ctx, "injection disabled for trigger", logger.String("trigger", string(t)), logger.Error(err))
			}
			continue
		}
		if plan == nil {
			continue
		}

		e.pending[t] = true
		e.seq++
		heap.Push(&e.timers, &timer{
			due:     plan.FireAt,
			seq:     e.seq,
			kind:    timerPress,
			trigger: plan.Trigger,
			hold:    plan.Hold,
			id:      plan.ID,
		})
	}
}

// fireDueTimers pops every timer that is due. Press timers pass through
// two last-line checks: the trigger must still be active (otherwise the
// click is cancelled — no phantom clicks after the user stops), and the
// ceiling guard is re-evaluated at emit time in case real clicks landed
// after scheduling. A press that fires always schedules its release.
func (e *Engine) fireDueTimers(ctx context.Context, now time.Time) {
	for e.timers.Len() > 0 && !e.timers.peek().due.After(now) {
		tm := heap.Pop(&e.timers).(*timer)

		if tm.kind == timerRelease {
			e.emit(ctx, model.ClickEvent{
				Trigger: tm.trigger, Kind: model.Release, At: now, Synthetic: true, ID: tm.id,
			})
			continue
		}

		if !e.est.Active(tm.trigger, now, e.cfg.ActivityHorizon()) {
			delete(e.pending, tm.trigger)
			e.cancelled++
			metrics.RecordInjectionCancelled(string(tm.trigger))
			continue
		}

		earliest, ok := e.est.EarliestFire(tm.trigger, now, e.maxTriggerBudget, e.maxTotalBudget)
		if !ok {
			// Unreachable after config validation; drop rather than risk
			// the ceiling.
			delete(e.pending, tm.trigger)
			continue
		}
		if earliest.After(now) {
			tm.due = earliest
			heap.Push(&e.timers, tm)
			e.deferred++
			metrics.RecordInjectionDeferred(string(tm.trigger))
			continue
		}

		press := model.ClickEvent{
			Trigger: tm.trigger, Kind: model.Press, At: now, Synthetic: true, ID: tm.id,
		}
		e.emit(ctx, press)
		e.est.Observe(press) // synthetic presses count toward measured CPS
		e.injected++
		metrics.RecordClickInjected(string(tm.trigger))
		delete(e.pending, tm.trigger)

		e.seq++
		heap.Push(&e.timers, &timer{
			due:     now.Add(tm.hold),
			seq:     e.seq,
			kind:    timerRelease,
			trigger: tm.trigger,
			hold:    0,
			id:      tm.id,
		})
	}
}

func (e *Engine) emit(ctx context.Context, ev model.ClickEvent) {
	if err := e.clicks.EmitClick(ctx, ev); err != nil {
		e.log.Error(ctx, "click sink failed",
			logger.String("trigger", string(ev.Trigger)),
			logger.String("kind", ev.Kind.String()),
			logger.Error(err),
		)
	}
}

func (e *Engine) logStatus(ctx context.Context, now time.Time, total, multiplier float64) {
	state := e.damper.State()
	fields := []logger.Field{
		logger.String("phase", state.Phase.String()),
		logger.Float64("multiplier", multiplier),
		logger.Float64("total_cps", total),
		logger.Uint64("injected", e.injected),
		logger.Uint64("dropped", e.queue.Dropped()),
	}
	for t := range e.triggers {
		fields = append(fields, logger.Float64("cps_"+string(t), e.est.Estimate(t, now)))
	}
	e.log.Debug(ctx, "status", fields...)
}

// GetStats returns an engine snapshot for the ops surface.
func (e *Engine) GetStats() map[string]interface{} {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	state := e.damper.State()

	cps := make(map[string]float64, len(e.triggers))
	disabled := make([]string, 0)
	for t := range e.triggers {
		cps[string(t)] = e.est.Estimate(t, now)
		if e.injector.Disabled(t) {
			disabled = append(disabled, string(t))
		}
	}

	return map[string]interface{}{
		"started":          e.started,
		"phase":            state.Phase.String(),
		"multiplier":       state.Multiplier,
		"cps":              cps,
		"totalCPS":         e.est.TotalEstimate(now),
		"queueLength":      e.queue.Len(),
		"droppedEvents":    e.queue.Dropped(),
		"outOfOrderEvents": e.est.OutOfOrder(),
		"injectedClicks":   e.injected,
		"cancelledClicks":  e.cancelled,
		"deferredClicks":   e.deferred,
		"pendingTimers":    e.timers.Len(),
		"disabledTriggers": disabled,
		"hardCPSLimit":     e.cfg.HardCPSLimit,
		"targetCPSRange":   []float64{e.cfg.TargetCPSLo, e.cfg.TargetCPSHi},
	}
}
