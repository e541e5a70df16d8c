// Package sink declares the engine's output boundaries: where synthetic
// click events and sensitivity updates go. OS-level replay/pointer
// integration implements these interfaces outside the core.
package sink

import (
	"context"

	"github.com/tsachs/pacer/internal/domain/model"
)

// ClickSink receives synthetic click events for replay.
type ClickSink interface {
	EmitClick(ctx context.Context, ev model.ClickEvent) error
}

// SensitivitySink receives sensitivity-multiplier updates.
type SensitivitySink interface {
	ApplySensitivity(ctx context.Context, multiplier float64) error
}
