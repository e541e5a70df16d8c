// Package rate maintains per-trigger sliding windows of press timestamps
// and derives instantaneous clicks-per-second estimates from them.
package rate

import (
	"time"

	"github.com/tsachs/pacer/internal/domain/model"
)

const compactionSlack = 64 // unused head capacity tolerated before compacting

// window is a monotonic press-timestamp queue for one trigger. Timestamps
// are appended at the back and expired from the front, so every operation
// is O(1) amortized.
type window struct {
	times []time.Time
	head  int

	lastPress time.Time
	prevPress time.Time
}

func (w *window) push(t time.Time) {
	w.times = append(w.times, t)
	w.prevPress = w.lastPress
	w.lastPress = t
}

// evict drops timestamps at or before the horizon (expiry end exclusive:
// a press exactly lookback old no longer counts).
func (w *window) evict(horizon time.Time) {
	for w.head < len(w.times) && !w.times[w.head].After(horizon) {
		w.head++
	}
	if w.head > compactionSlack && w.head*2 > len(w.times) {
		w.times = append(w.times[:0], w.times[w.head:]...)
		w.head = 0
	}
}

func (w *window) count() int {
	return len(w.times) - w.head
}

// countAt returns how many recorded presses would still be inside a window
// ending at the given instant. Unlike evict it does not mutate state, so it
// can look into the future for schedule-time simulation.
func (w *window) countAt(end time.Time, lookback time.Duration) int {
	horizon := end.Add(-lookback)
	n := 0
	for i := len(w.times) - 1; i >= w.head; i-- {
		t := w.times[i]
		if t.After(end) {
			continue
		}
		if !t.After(horizon) {
			break
		}
		n++
	}
	return n
}

// Estimator derives CPS estimates over a fixed lookback horizon. It is not
// safe for concurrent use; the control loop owns it exclusively.
type Estimator struct {
	lookback   time.Duration
	windows    map[model.Trigger]*window
	outOfOrder uint64
}

// NewEstimator creates an estimator with the given lookback horizon.
func NewEstimator(lookback time.Duration, triggers []model.Trigger) *Estimator {
	e := &Estimator{
		lookback: lookback,
		windows:  make(map[model.Trigger]*window, len(triggers)),
	}
	for _, t := range triggers {
		e.windows[t] = &window{}
	}
	return e
}

// Observe records a press timestamp into the trigger's window. Release
// events are accepted and ignored; a click is counted once, at press time.
// Returns false when the event was rejected (unknown trigger, or a
// timestamp earlier than the last one observed for the trigger — those are
// dropped so a skewed clock can never corrupt the window).
func (e *Estimator) Observe(ev model.ClickEvent) bool {
	w, ok := e.windows[ev.Trigger]
	if !ok {
		return false
	}
	if ev.Kind != model.Press {
		return true
	}
	if !w.lastPress.IsZero() && ev.At.Before(w.lastPress) {
		e.outOfOrder++
		return false
	}
	w.push(ev.At)
	return true
}

// Estimate returns the instantaneous CPS for one trigger at the given
// instant: window count divided by the lookback in seconds. An empty window
// yields 0. Calling Estimate twice with no new observations returns the
// same value.
func (e *Estimator) Estimate(trigger model.Trigger, now time.Time) float64 {
	w, ok := e.windows[trigger]
	if !ok {
		return 0
	}
	w.evict(now.Add(-e.lookback))
	return float64(w.count()) / e.lookback.Seconds()
}

// Sample packages one trigger's estimate as a timestamped reading.
func (e *Estimator) Sample(trigger model.Trigger, now time.Time) model.RateSample {
	return model.RateSample{
		Trigger:    trigger,
		CPS:        e.Estimate(trigger, now),
		ComputedAt: now,
	}
}

// TotalEstimate returns the CPS summed across all triggers.
func (e *Estimator) TotalEstimate(now time.Time) float64 {
	total := 0.0
	for t := range e.windows {
		total += e.Estimate(t, now)
	}
	return total
}

// LastPress returns the most recent press timestamp for a trigger, or the
// zero time when none was observed.
func (e *Estimator) LastPress(trigger model.Trigger) time.Time {
	if w, ok := e.windows[trigger]; ok {
		return w.lastPress
	}
	return time.Time{}
}

// Active reports whether a real press landed on the trigger within the
// activity horizon.
func (e *Estimator) Active(trigger model.Trigger, now time.Time, horizon time.Duration) bool {
	last := e.LastPress(trigger)
	return !last.IsZero() && now.Sub(last) <= horizon
}

// BurstDetected reports whether the two most recent presses on the trigger
// arrived within the threshold of each other.
func (e *Estimator) BurstDetected(trigger model.Trigger, threshold time.Duration) bool {
	w, ok := e.windows[trigger]
	if !ok || w.prevPress.IsZero() {
		return false
	}
	return w.lastPress.Sub(w.prevPress) <= threshold
}

// EarliestFire returns the earliest instant at or after notBefore when one
// additional press on the trigger keeps the trigger window at or below
// maxTrigger presses and the union of all windows at or below maxTotal —
// the schedule-time simulation behind the hard-ceiling invariant. The
// second return is false when no budget exists at all (maxTrigger or
// maxTotal below 1), which no waiting can fix.
func (e *Estimator) EarliestFire(trigger model.Trigger, notBefore time.Time, maxTrigger, maxTotal int) (time.Time, bool) {
	if maxTrigger < 1 || maxTotal < 1 {
		return time.Time{}, false
	}
	w, ok := e.windows[trigger]
	if !ok {
		return time.Time{}, false
	}

	fire := notBefore
	// Waiting only ever shrinks the window, so walking each constraint's
	// expiry forward converges; two passes settle both constraints.
	for i := 0; i < 2; i++ {
		fire = e.admitAfter(fire, w, maxTrigger-1)
		fire = e.admitAllAfter(fire, maxTotal-1)
	}
	return fire, true
}

// admitAfter returns the earliest t >= fire when the trigger window holds at
// most budget existing presses.
func (e *Estimator) admitAfter(fire time.Time, w *window, budget int) time.Time {
	for w.countAt(fire, e.lookback) > budget {
		// The oldest still-counted press must expire first.
		oldest := e.oldestCounted(w, fire)
		fire = oldest.Add(e.lookback + time.Microsecond)
	}
	return fire
}

// admitAllAfter returns the earliest t >= fire when the union of all windows
// holds at most budget existing presses.
func (e *Estimator) admitAllAfter(fire time.Time, budget int) time.Time {
	for e.totalCountAt(fire) > budget {
		var oldest time.Time
		for _, w := range e.windows {
			if w.countAt(fire, e.lookback) == 0 {
				continue
			}
			t := e.oldestCounted(w, fire)
			if oldest.IsZero() || t.Before(oldest) {
				oldest = t
			}
		}
		if oldest.IsZero() {
			break
		}
		fire = oldest.Add(e.lookback + time.Microsecond)
	}
	return fire
}

func (e *Estimator) totalCountAt(end time.Time) int {
	n := 0
	for _, w := range e.windows {
		n += w.countAt(end, e.lookback)
	}
	return n
}

func (e *Estimator) oldestCounted(w *window, end time.Time) time.Time {
	horizon := end.Add(-e.lookback)
	for i := w.head; i < len(w.times); i++ {
		t := w.times[i]
		if t.After(horizon) && !t.After(end) {
			return t
		}
	}
	return end
}

// OutOfOrder returns how many events were rejected for non-monotonic
// timestamps since startup.
func (e *Estimator) OutOfOrder() uint64 {
	return e.outOfOrder
}

// Lookback returns the estimator's window length.
func (e *Estimator) Lookback() time.Duration {
	return e.lookback
}
