// Package damper implements the sensitivity damper: a per-process state
// machine that converts sustained high click rates into a continuously
// ramped sensitivity multiplier.
package damper

import (
	"time"

	"github.com/tsachs/pacer/internal/domain/model"
)

// Default tuning, overridable via options. The asymmetric ramps mirror the
// feel of the damper this replaces: quick to suppress, quicker to recover.
const (
	defaultHardLimit         = 18.0
	defaultEngageFraction    = 0.55
	defaultDisengageFraction = 0.40
	defaultEngageDwell       = 60 * time.Millisecond
	defaultDisengageDwell    = 60 * time.Millisecond
	defaultRampUp            = 40 * time.Millisecond
	defaultRampDown          = 15 * time.Millisecond
	defaultFloor             = 0.5
)

// TransitionFunc observes phase changes; wired to metrics/logging by the
// controller. Called synchronously from Tick.
type TransitionFunc func(from, to model.DamperPhase, at time.Time)

// Damper holds the suppression state machine. Tick is its sole mutator;
// the control loop owns it exclusively and no locking is done here.
type Damper struct {
	engageThreshold    float64
	disengageThreshold float64
	engageDwell        time.Duration
	disengageDwell     time.Duration
	rampUp             time.Duration
	rampDown           time.Duration
	floor              float64

	phase          model.DamperPhase
	phaseEnteredAt time.Time
	multiplier     float64

	aboveSince time.Time
	belowSince time.Time

	onTransition TransitionFunc
}

// New creates a damper in the Idle phase.
func New(opts ...Option) *Damper {
	d := &Damper{
		engageThreshold:    defaultHardLimit * defaultEngageFraction,
		disengageThreshold: defaultHardLimit * defaultDisengageFraction,
		engageDwell:        defaultEngageDwell,
		disengageDwell:     defaultDisengageDwell,
		rampUp:             defaultRampUp,
		rampDown:           defaultRampDown,
		floor:              defaultFloor,
		phase:              model.PhaseIdle,
		multiplier:         1.0,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns a read-only snapshot.
func (d *Damper) State() model.DamperState {
	return model.DamperState{
		Phase:          d.phase,
		Multiplier:     d.multiplier,
		PhaseEnteredAt: d.phaseEnteredAt,
	}
}

// Tick advances the state machine and returns the current multiplier. It is
// a pure function of (state, elapsed time, cps): calling it is the only way
// state changes, and the returned multiplier is continuous in time across
// every transition sequence, re-entrant ramp interruptions included.
func (d *Damper) Tick(now time.Time, cps float64) float64 {
	// A floor of 1.0 makes suppression a no-op; stay Idle forever rather
	// than divide by a zero ramp span.
	if d.floor >= 1.0 {
		d.multiplier = 1.0
		return d.multiplier
	}

	engage := d.trackEngage(now, cps)
	disengage := d.trackDisengage(now, cps)

	switch d.phase {
	case model.PhaseIdle:
		d.multiplier = 1.0
		if engage {
			d.enterRampUp(now)
		}

	case model.PhaseRampUp:
		p := d.progress(now, d.rampUp)
		d.multiplier = 1.0 - p*(1.0-d.floor)
		switch {
		case p >= 1.0:
			d.transition(model.PhaseEngaged, now)
			d.multiplier = d.floor
		case disengage:
			d.enterRampDown(now)
		}

	case model.PhaseEngaged:
		d.multiplier = d.floor
		if disengage {
			d.enterRampDown(now)
		}

	case model.PhaseRampDown:
		p := d.progress(now, d.rampDown)
		d.multiplier = d.floor + p*(1.0-d.floor)
		switch {
		case p >= 1.0:
			d.transition(model.PhaseIdle, now)
			d.multiplier = 1.0
		case engage:
			// Spike during recovery: resume suppression from the current
			// multiplier, never from 1.0.
			d.enterRampUp(now)
		}
	}

	return d.multiplier
}

// trackEngage debounces the engage condition: cps must stay above the
// engage threshold for the full dwell before a single true is worth acting
// on. One outlier sample never flips the machine.
func (d *Damper) trackEngage(now time.Time, cps float64) bool {
	if cps <= d.engageThreshold {
		d.aboveSince = time.Time{}
		return false
	}
	if d.aboveSince.IsZero() {
		d.aboveSince = now
	}
	return now.Sub(d.aboveSince) >= d.engageDwell
}

// trackDisengage mirrors trackEngage against the lower threshold;
// the gap between the two thresholds is the hysteresis band.
func (d *Damper) trackDisengage(now time.Time, cps float64) bool {
	if cps >= d.disengageThreshold {
		d.belowSince = time.Time{}
		return false
	}
	if d.belowSince.IsZero() {
		d.belowSince = now
	}
	return now.Sub(d.belowSince) >= d.disengageDwell
}

func (d *Damper) progress(now time.Time, span time.Duration) float64 {
	if span <= 0 {
		return 1.0
	}
	p := float64(now.Sub(d.phaseEnteredAt)) / float64(span)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// enterRampUp starts (or resumes) the ramp toward the floor. The phase
// entry is back-dated so the linear interpolation passes through the
// current multiplier, keeping the output continuous.
func (d *Damper) enterRampUp(now time.Time) {
	p := (1.0 - d.multiplier) / (1.0 - d.floor)
	d.transition(model.PhaseRampUp, now)
	d.phaseEnteredAt = now.Add(-time.Duration(p * float64(d.rampUp)))
}

func (d *Damper) enterRampDown(now time.Time) {
	p := (d.multiplier - d.floor) / (1.0 - d.floor)
	d.transition(model.PhaseRampDown, now)
	d.phaseEnteredAt = now.Add(-time.Duration(p * float64(d.rampDown)))
}

func (d *Damper) transition(to model.DamperPhase, now time.Time) {
	from := d.phase
	d.phase = to
	d.phaseEnteredAt = now
	d.aboveSince = time.Time{}
	d.belowSince = time.Time{}
	if d.onTransition != nil && from != to {
		d.onTransition(from, to, now)
	}
}
