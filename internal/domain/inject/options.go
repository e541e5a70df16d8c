package inject

import (
	"time"

	"github.com/tsachs/pacer/internal/domain/model"
)

// Option applies a configuration option to the Injector.
type Option func(*Injector)

// WithTargetRange sets the CPS window injection shapes toward.
func WithTargetRange(lo, hi float64) Option {
	return func(i *Injector) {
		if lo > 0 && hi >= lo {
			i.targetLo = lo
			i.targetHi = hi
		}
	}
}

// WithHardLimit sets the ceiling the merged click rate may never exceed.
func WithHardLimit(limit float64) Option {
	return func(i *Injector) {
		if limit > 0 {
			i.hardLimit = limit
		}
	}
}

// WithHoldRange bounds the randomized synthetic hold duration.
func WithHoldRange(minHold, maxHold time.Duration) Option {
	return func(i *Injector) {
		if minHold > 0 && maxHold >= minHold {
			i.holdMin = minHold
			i.holdMax = maxHold
		}
	}
}

// WithSeed derives per-trigger randomness from a fixed base seed.
func WithSeed(seed int64) Option {
	return func(i *Injector) {
		i.newRand = seededRandFactory(seed)
	}
}

// WithRandFactory replaces the randomness source entirely; tests use this
// to make scheduling deterministic.
func WithRandFactory(fn func(model.Trigger) Rand) Option {
	return func(i *Injector) {
		if fn != nil {
			i.newRand = fn
		}
	}
}
