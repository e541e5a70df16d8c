// Package queue carries click events from the input-capture goroutine to
// the control loop.
//
// The queue is single-producer/single-consumer with a bounded capacity and
// an explicit overflow policy: when full, the oldest event is dropped and
// counted. Enqueue never blocks — stalling the capture path would skew the
// very click timing the engine exists to measure.
package queue

import (
	"sync"
	"sync/atomic"

	"github.com/tsachs/pacer/internal/domain/model"
	"github.com/tsachs/pacer/pkg/metrics"
)

const defaultCapacity = 4096

// Event is the payload type flowing through the queue.
type Event = model.ClickEvent

// InMemoryQueue implements the bounded SPSC event queue over a buffered
// channel.
type InMemoryQueue struct {
	events   chan Event
	capacity int
	dropped  atomic.Uint64

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}

	q.events = make(chan Event, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)

	return q
}

// Enqueue adds an event, evicting the oldest one first if the queue is
// full. Returns false only when the queue is closed. Safe to call from
// exactly one producer goroutine.
func (q *InMemoryQueue) Enqueue(e Event) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}

	for {
		select {
		case q.events <- e:
			size := len(q.events)
			metrics.UpdateQueueSize(size)
			metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
			return true
		default:
			// Full: shed the oldest event and retry. With a single
			// producer the retry succeeds on the next pass.
			select {
			case <-q.events:
				q.dropped.Add(1)
				metrics.RecordEventDropped()
			default:
			}
		}
	}
}

// Events exposes the consumer side. The control loop drains it with
// non-blocking receives at the top of every tick; the channel closes when
// the queue closes.
func (q *InMemoryQueue) Events() <-chan Event {
	return q.events
}

// Len returns the current number of queued events.
func (q *InMemoryQueue) Len() int {
	return len(q.events)
}

// Dropped returns how many events the overflow policy has shed.
func (q *InMemoryQueue) Dropped() uint64 {
	return q.dropped.Load()
}

// Close shuts down the queue. After closing, Enqueue returns false and the
// Events channel is closed once drained. Closing twice returns ErrClosed.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	close(q.events)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
