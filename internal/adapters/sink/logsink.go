package sink

import (
	"context"

	"github.com/tsachs/pacer/internal/domain/model"
	"github.com/tsachs/pacer/pkg/logger"
)

// LogSink writes every output event to the structured log. It is the
// default sink for the daemon when no OS integration is wired, and doubles
// as a live trace of what the engine would replay.
type LogSink struct {
	log logger.Logger
}

// NewLogSink creates a sink logging under the given name.
func NewLogSink(name string) *LogSink {
	return &LogSink{log: logger.Named(name)}
}

func (s *LogSink) EmitClick(ctx context.Context, ev model.ClickEvent) error {
	s.log.Info(ctx, "synthetic click",
		logger.String("trigger", string(ev.Trigger)),
		logger.String("kind", ev.Kind.String()),
		logger.Time("at", ev.At),
		logger.String("id", ev.ID),
	)
	return nil
}

func (s *LogSink) ApplySensitivity(ctx context.Context, multiplier float64) error {
	s.log.Info(ctx, "sensitivity update", logger.Float64("multiplier", multiplier))
	return nil
}
