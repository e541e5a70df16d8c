package engine

import (
	"github.com/tsachs/pacer/internal/adapters/mq/queue"
	"github.com/tsachs/pacer/internal/adapters/sink"
	"github.com/tsachs/pacer/internal/domain/inject"
	"github.com/tsachs/pacer/internal/domain/model"
	"github.com/tsachs/pacer/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithClickSink routes synthetic click events to the given sink.
func WithClickSink(s sink.ClickSink) Option {
	return func(e *Engine) {
		if s != nil {
			e.clicks = s
		}
	}
}

// WithSensitivitySink routes multiplier updates to the given sink.
func WithSensitivitySink(s sink.SensitivitySink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sens = s
		}
	}
}

// WithQueue replaces the input queue, e.g. to share one with a capture
// adapter constructed elsewhere.
func WithQueue(q *queue.InMemoryQueue) Option {
	return func(e *Engine) {
		if q != nil {
			e.queue = q
		}
	}
}

// WithInjectionSeed derives per-trigger injection jitter from a fixed
// base seed, making runs reproducible.
func WithInjectionSeed(seed int64) Option {
	return func(e *Engine) {
		e.injector = inject.New(
			inject.WithTargetRange(e.cfg.TargetCPSLo, e.cfg.TargetCPSHi),
			inject.WithHardLimit(e.cfg.HardCPSLimit),
			inject.WithHoldRange(e.cfg.HoldMin(), e.cfg.HoldMax()),
			inject.WithSeed(seed),
		)
	}
}

// WithRandFactory makes injection scheduling deterministic in tests.
func WithRandFactory(fn func(model.Trigger) inject.Rand) Option {
	return func(e *Engine) {
		if fn != nil {
			e.injector = inject.New(
				inject.WithTargetRange(e.cfg.TargetCPSLo, e.cfg.TargetCPSHi),
				inject.WithHardLimit(e.cfg.HardCPSLimit),
				inject.WithHoldRange(e.cfg.HoldMin(), e.cfg.HoldMax()),
				inject.WithRandFactory(fn),
			)
		}
	}
}
