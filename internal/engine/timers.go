package engine

import (
	"container/heap"
	"time"

	"github.com/tsachs/pacer/internal/domain/model"
)

type timerKind int

const (
	timerPress timerKind = iota
	timerRelease
)

// timer is one pending synthetic event. Press timers may be cancelled or
// deferred before firing; a release timer always fires so no synthetic
// press is left unpaired.
type timer struct {
	due     time.Time
	seq     uint64 // insertion order tie-break for equal due times
	kind    timerKind
	trigger model.Trigger
	hold    time.Duration
	id      string
}

// timerHeap is a min-heap keyed by due time, polled once per tick.
type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) { *h = append(*h, x.(*timer)) }

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

func (h timerHeap) peek() *timer {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}

var _ heap.Interface = (*timerHeap)(nil)
