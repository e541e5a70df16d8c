package damper

import "time"

// Option applies a configuration option to the Damper.
type Option func(*Damper)

// WithThresholds sets the engage/disengage CPS thresholds as fractions of
// the hard limit. Values are taken as given; range checks belong to config
// validation.
func WithThresholds(hardLimit, engageFraction, disengageFraction float64) Option {
	return func(d *Damper) {
		d.engageThreshold = hardLimit * engageFraction
		d.disengageThreshold = hardLimit * disengageFraction
	}
}

// WithDwell sets the debounce windows for engaging and disengaging.
func WithDwell(engage, disengage time.Duration) Option {
	return func(d *Damper) {
		if engage >= 0 {
			d.engageDwell = engage
		}
		if disengage >= 0 {
			d.disengageDwell = disengage
		}
	}
}

// WithRamps sets the ramp durations: into suppression and back out.
func WithRamps(up, down time.Duration) Option {
	return func(d *Damper) {
		if up > 0 {
			d.rampUp = up
		}
		if down > 0 {
			d.rampDown = down
		}
	}
}

// WithFloor sets the suppressed multiplier level.
func WithFloor(floor float64) Option {
	return func(d *Damper) {
		if floor > 0 && floor <= 1 {
			d.floor = floor
		}
	}
}

// WithTransitionFunc registers a phase transition observer.
func WithTransitionFunc(fn TransitionFunc) Option {
	return func(d *Damper) {
		d.onTransition = fn
	}
}
