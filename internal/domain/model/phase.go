package model

import "time"

// DamperPhase enumerates the sensitivity damper's state machine phases.
type DamperPhase int

const (
	PhaseIdle DamperPhase = iota
	PhaseRampUp
	PhaseEngaged
	PhaseRampDown
)

func (p DamperPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRampUp:
		return "ramp_up"
	case PhaseEngaged:
		return "engaged"
	case PhaseRampDown:
		return "ramp_down"
	default:
		return "unknown"
	}
}

// DamperState is a read-only snapshot of the damper. Only the damper itself
// mutates the underlying state; everything else sees copies of this.
type DamperState struct {
	Phase          DamperPhase
	Multiplier     float64 // in [sens multiplier, 1.0]
	PhaseEnteredAt time.Time
}
