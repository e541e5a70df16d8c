// Package model contains domain models passed between layers.
package model

import "time"

// Trigger identifies one monitored input source, e.g. "left" or "right".
// The set of triggers is fixed at configuration time.
type Trigger string

// Common trigger identifiers.
const (
	TriggerLeft  Trigger = "left"
	TriggerRight Trigger = "right"
)

// Kind distinguishes the two halves of a click.
type Kind int

const (
	Press Kind = iota
	Release
)

func (k Kind) String() string {
	switch k {
	case Press:
		return "press"
	case Release:
		return "release"
	default:
		return "unknown"
	}
}

// ClickEvent is a single button transition. Real events arrive from the
// input boundary; synthetic ones are produced by the injector. Both are
// indistinguishable downstream except for the provenance fields, which
// exist only for telemetry and tests.
type ClickEvent struct {
	Trigger   Trigger
	Kind      Kind
	At        time.Time // monotonic, sub-millisecond resolution
	Synthetic bool
	ID        string // uuid for synthetic events, empty for real ones
}

// RateSample is an ephemeral per-tick rate reading for one trigger.
type RateSample struct {
	Trigger    Trigger
	CPS        float64
	ComputedAt time.Time
}
