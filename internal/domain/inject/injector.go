// Package inject decides when to synthesize clicks. Each control tick it
// may produce at most one plan per trigger: a jittered press time plus a
// randomized hold, both vetted against the hard CPS ceiling before anything
// is scheduled.
package inject

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tsachs/pacer/internal/domain/model"
)

const (
	defaultTargetLo  = 15.0
	defaultTargetHi  = 17.0
	defaultHardLimit = 18.0
	defaultHoldMin   = 10 * time.Millisecond
	defaultHoldMax   = 20 * time.Millisecond
	floatSlack       = 1e-9
)

// Window is the injector's read-only view of the rate estimator.
type Window interface {
	Estimate(trigger model.Trigger, now time.Time) float64
	EarliestFire(trigger model.Trigger, notBefore time.Time, maxTrigger, maxTotal int) (time.Time, bool)
	Lookback() time.Duration
}

// Plan describes one synthetic click: a press at FireAt, held for Hold,
// then released. The ID ties the press/release pair together in telemetry.
type Plan struct {
	Trigger model.Trigger
	FireAt  time.Time
	Hold    time.Duration
	ID      string
}

// Injector holds per-trigger injection state. Owned by the control loop;
// not safe for concurrent use.
type Injector struct {
	targetLo  float64
	targetHi  float64
	hardLimit float64
	holdMin   time.Duration
	holdMax   time.Duration

	newRand  func(model.Trigger) Rand
	rands    map[model.Trigger]Rand
	disabled map[model.Trigger]bool
}

// New creates an injector with the given options.
func New(opts ...Option) *Injector {
	i := &Injector{
		targetLo:  defaultTargetLo,
		targetHi:  defaultTargetHi,
		hardLimit: defaultHardLimit,
		holdMin:   defaultHoldMin,
		holdMax:   defaultHoldMax,
		newRand:   seededRandFactory(time.Now().UnixNano()),
		rands:     make(map[model.Trigger]Rand),
		disabled:  make(map[model.Trigger]bool),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Plan decides whether to schedule a synthetic click for the trigger this
// tick. A nil plan with a nil error means no injection is warranted. An
// ErrInfeasible means the trigger has been disabled: no compliant schedule
// exists under the current parameters, and the injector will never risk
// the ceiling to meet the target.
//
// The caller is responsible for calling Plan only for triggers that are
// currently active and without a pending synthetic click.
func (i *Injector) Plan(now time.Time, trigger model.Trigger, win Window) (*Plan, error) {
	if i.disabled[trigger] {
		return nil, nil
	}

	cps := win.Estimate(trigger, now)
	if cps >= i.targetLo {
		// At or above the target floor; never inject to push the rate
		// higher than it already is.
		return nil, nil
	}

	lookbackSec := win.Lookback().Seconds()
	maxTrigger := budget(i.targetHi, lookbackSec)
	maxTotal := budget(i.hardLimit, lookbackSec)

	// Human-plausible inter-click delay: uniform over the period range the
	// target window implies.
	minDelay := time.Duration(float64(time.Second) / i.targetHi)
	maxDelay := time.Duration(float64(time.Second) / i.targetLo)
	delay := minDelay + time.Duration(i.rand(trigger).Float64()*float64(maxDelay-minDelay))

	fireAt, ok := win.EarliestFire(trigger, now.Add(delay), maxTrigger, maxTotal)
	if !ok {
		i.disabled[trigger] = true
		return nil, fmt.Errorf("%w: trigger %q, target [%v, %v], hard limit %v",
			ErrInfeasible, trigger, i.targetLo, i.targetHi, i.hardLimit)
	}

	hold := i.holdMin + time.Duration(i.rand(trigger).Float64()*float64(i.holdMax-i.holdMin))

	return &Plan{
		Trigger: trigger,
		FireAt:  fireAt,
		Hold:    hold,
		ID:      uuid.New().String(),
	}, nil
}

// Disabled reports whether injection has been shut off for the trigger.
func (i *Injector) Disabled(trigger model.Trigger) bool {
	return i.disabled[trigger]
}

// rand returns the trigger's private randomness source, creating it on
// first use. Sources are independent per trigger so the jitter streams
// share no detectable periodicity.
func (i *Injector) rand(trigger model.Trigger) Rand {
	r, ok := i.rands[trigger]
	if !ok {
		r = i.newRand(trigger)
		i.rands[trigger] = r
	}
	return r
}

// budget converts a CPS bound over a lookback window into a whole-click
// budget. The slack absorbs float error on exact multiples.
func budget(cpsLimit, lookbackSec float64) int {
	return int(math.Floor(cpsLimit*lookbackSec + floatSlack))
}
