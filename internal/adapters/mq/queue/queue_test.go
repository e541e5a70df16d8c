package queue

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tsachs/pacer/internal/domain/model"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func pressAt(i int) Event {
	return Event{
		Trigger: model.TriggerLeft,
		Kind:    model.Press,
		At:      t0.Add(time.Duration(i) * time.Millisecond),
		ID:      fmt.Sprintf("e%d", i),
	}
}

func TestEnqueueAndDrain(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))

	if l := q.Len(); l != 0 {
		t.Errorf("expected empty queue, got %d", l)
	}

	for i := 0; i < 3; i++ {
		if !q.Enqueue(pressAt(i)) {
			t.Fatalf("enqueue %d failed", i)
		}
	}
	if l := q.Len(); l != 3 {
		t.Errorf("expected length 3, got %d", l)
	}

	// Drain the way the control loop does: non-blocking receives.
	var got []Event
	for {
		select {
		case e := <-q.Events():
			got = append(got, e)
			continue
		default:
		}
		break
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	for i, e := range got {
		if e.ID != fmt.Sprintf("e%d", i) {
			t.Errorf("expected FIFO order, got %s at %d", e.ID, i)
		}
	}
}

func TestOverflowDropsOldest(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))

	for i := 0; i < 5; i++ {
		if !q.Enqueue(pressAt(i)) {
			t.Fatalf("enqueue %d must not fail on overflow", i)
		}
	}

	if d := q.Dropped(); d != 3 {
		t.Errorf("expected 3 dropped events, got %d", d)
	}
	if l := q.Len(); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}

	// The survivors are the newest two.
	first := <-q.Events()
	second := <-q.Events()
	if first.ID != "e3" || second.ID != "e4" {
		t.Errorf("expected e3,e4 to survive, got %s,%s", first.ID, second.ID)
	}
}

func TestEnqueueNeverBlocks(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10_000; i++ {
			q.Enqueue(pressAt(i))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("enqueue blocked with no consumer")
	}
}

func TestCloseSemantics(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	q.Enqueue(pressAt(0))

	if q.IsClosed() {
		t.Error("expected queue open initially")
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue closed")
	}
	if q.Enqueue(pressAt(1)) {
		t.Error("expected enqueue to fail after close")
	}

	// Buffered event still drains, then the channel reports closed.
	if e := <-q.Events(); e.ID != "e0" {
		t.Errorf("expected buffered e0, got %s", e.ID)
	}
	if _, ok := <-q.Events(); ok {
		t.Error("expected closed channel after drain")
	}

	if err := q.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("double close should report ErrClosed, got %v", err)
	}
}
