package inject

import (
	"hash/fnv"
	"math/rand"

	"github.com/tsachs/pacer/internal/domain/model"
)

// Rand is the randomness the injector consumes. Swappable for a
// deterministic source in tests.
type Rand interface {
	Float64() float64
}

// seededRandFactory derives an independent math/rand source per trigger
// from one base seed, so two triggers never share a jitter stream.
func seededRandFactory(seed int64) func(model.Trigger) Rand {
	return func(t model.Trigger) Rand {
		h := fnv.New64a()
		_, _ = h.Write([]byte(t))
		return rand.New(rand.NewSource(seed ^ int64(h.Sum64()))) //nolint:gosec // timing jitter, not crypto
	}
}
