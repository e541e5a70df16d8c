package rate

import (
	"testing"
	"time"

	"github.com/tsachs/pacer/internal/domain/model"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func press(trigger model.Trigger, at time.Time) model.ClickEvent {
	return model.ClickEvent{Trigger: trigger, Kind: model.Press, At: at}
}

func newTestEstimator(lookback time.Duration) *Estimator {
	return NewEstimator(lookback, []model.Trigger{model.TriggerLeft, model.TriggerRight})
}

func TestEstimateEmptyWindow(t *testing.T) {
	e := newTestEstimator(time.Second)
	if cps := e.Estimate(model.TriggerLeft, t0); cps != 0 {
		t.Errorf("expected 0 cps for empty window, got %v", cps)
	}
	if cps := e.Estimate("middle", t0); cps != 0 {
		t.Errorf("expected 0 cps for unknown trigger, got %v", cps)
	}
}

func TestEstimateCountsPressesInWindow(t *testing.T) {
	e := newTestEstimator(time.Second)

	for i := 0; i < 10; i++ {
		if !e.Observe(press(model.TriggerLeft, t0.Add(time.Duration(i)*100*time.Millisecond))) {
			t.Fatalf("observe %d rejected", i)
		}
	}

	now := t0.Add(950 * time.Millisecond)
	if cps := e.Estimate(model.TriggerLeft, now); cps != 10 {
		t.Errorf("expected 10 cps, got %v", cps)
	}
}

func TestSampleMirrorsEstimate(t *testing.T) {
	e := newTestEstimator(time.Second)
	e.Observe(press(model.TriggerLeft, t0))
	e.Observe(press(model.TriggerLeft, t0.Add(200*time.Millisecond)))

	now := t0.Add(400 * time.Millisecond)
	s := e.Sample(model.TriggerLeft, now)
	if s.Trigger != model.TriggerLeft || s.CPS != 2 || !s.ComputedAt.Equal(now) {
		t.Errorf("unexpected sample: %+v", s)
	}
}

func TestEstimateEvictsExpired(t *testing.T) {
	e := newTestEstimator(time.Second)

	e.Observe(press(model.TriggerLeft, t0))
	e.Observe(press(model.TriggerLeft, t0.Add(500*time.Millisecond)))

	// At t0+1s the first press is exactly lookback old: expiry end is
	// exclusive, so it no longer counts.
	if cps := e.Estimate(model.TriggerLeft, t0.Add(time.Second)); cps != 1 {
		t.Errorf("expected 1 cps after boundary eviction, got %v", cps)
	}

	if cps := e.Estimate(model.TriggerLeft, t0.Add(2*time.Second)); cps != 0 {
		t.Errorf("expected 0 cps after full decay, got %v", cps)
	}
}

func TestEstimateIdempotent(t *testing.T) {
	e := newTestEstimator(time.Second)
	for i := 0; i < 5; i++ {
		e.Observe(press(model.TriggerLeft, t0.Add(time.Duration(i)*50*time.Millisecond)))
	}
	now := t0.Add(300 * time.Millisecond)
	first := e.Estimate(model.TriggerLeft, now)
	second := e.Estimate(model.TriggerLeft, now)
	if first != second {
		t.Errorf("estimate not idempotent: %v then %v", first, second)
	}
}

func TestReleaseEventsIgnored(t *testing.T) {
	e := newTestEstimator(time.Second)
	e.Observe(press(model.TriggerLeft, t0))
	e.Observe(model.ClickEvent{Trigger: model.TriggerLeft, Kind: model.Release, At: t0.Add(15 * time.Millisecond)})

	if cps := e.Estimate(model.TriggerLeft, t0.Add(100*time.Millisecond)); cps != 1 {
		t.Errorf("expected releases to be ignored, got %v cps", cps)
	}
}

func TestNonMonotonicTimestampDropped(t *testing.T) {
	e := newTestEstimator(time.Second)
	e.Observe(press(model.TriggerLeft, t0.Add(100*time.Millisecond)))

	if e.Observe(press(model.TriggerLeft, t0)) {
		t.Error("expected out-of-order press to be rejected")
	}
	if e.OutOfOrder() != 1 {
		t.Errorf("expected out-of-order count 1, got %d", e.OutOfOrder())
	}
	if cps := e.Estimate(model.TriggerLeft, t0.Add(200*time.Millisecond)); cps != 1 {
		t.Errorf("expected window untouched by rejected event, got %v cps", cps)
	}
}

func TestTriggersIndependent(t *testing.T) {
	e := newTestEstimator(time.Second)
	e.Observe(press(model.TriggerLeft, t0))
	e.Observe(press(model.TriggerLeft, t0.Add(100*time.Millisecond)))
	e.Observe(press(model.TriggerRight, t0.Add(50*time.Millisecond)))

	now := t0.Add(200 * time.Millisecond)
	if cps := e.Estimate(model.TriggerLeft, now); cps != 2 {
		t.Errorf("expected left cps 2, got %v", cps)
	}
	if cps := e.Estimate(model.TriggerRight, now); cps != 1 {
		t.Errorf("expected right cps 1, got %v", cps)
	}
	if total := e.TotalEstimate(now); total != 3 {
		t.Errorf("expected total cps 3, got %v", total)
	}
}

func TestActiveAndBurst(t *testing.T) {
	e := newTestEstimator(time.Second)
	horizon := 100 * time.Millisecond

	if e.Active(model.TriggerLeft, t0, horizon) {
		t.Error("expected inactive before any press")
	}

	e.Observe(press(model.TriggerLeft, t0))
	if !e.Active(model.TriggerLeft, t0.Add(80*time.Millisecond), horizon) {
		t.Error("expected active within horizon")
	}
	if e.Active(model.TriggerLeft, t0.Add(150*time.Millisecond), horizon) {
		t.Error("expected inactive past horizon")
	}

	if e.BurstDetected(model.TriggerLeft, 150*time.Millisecond) {
		t.Error("single press must not count as a burst")
	}
	e.Observe(press(model.TriggerLeft, t0.Add(120*time.Millisecond)))
	if !e.BurstDetected(model.TriggerLeft, 150*time.Millisecond) {
		t.Error("two presses 120ms apart should count as a burst")
	}
	e.Observe(press(model.TriggerLeft, t0.Add(500*time.Millisecond)))
	if e.BurstDetected(model.TriggerLeft, 150*time.Millisecond) {
		t.Error("380ms gap should not count as a burst")
	}
}

func TestEarliestFireImmediateWhenBudgetFree(t *testing.T) {
	e := newTestEstimator(time.Second)
	e.Observe(press(model.TriggerLeft, t0))

	want := t0.Add(100 * time.Millisecond)
	fire, ok := e.EarliestFire(model.TriggerLeft, want, 17, 18)
	if !ok {
		t.Fatal("expected feasible fire")
	}
	if !fire.Equal(want) {
		t.Errorf("expected immediate admission at %v, got %v", want, fire)
	}
}

func TestEarliestFireWaitsForExpiry(t *testing.T) {
	e := newTestEstimator(time.Second)
	// Three presses; with a per-trigger budget of 3 (two existing allowed),
	// the oldest press must expire before a new one may land.
	e.Observe(press(model.TriggerLeft, t0))
	e.Observe(press(model.TriggerLeft, t0.Add(10*time.Millisecond)))
	e.Observe(press(model.TriggerLeft, t0.Add(20*time.Millisecond)))

	notBefore := t0.Add(30 * time.Millisecond)
	fire, ok := e.EarliestFire(model.TriggerLeft, notBefore, 3, 100)
	if !ok {
		t.Fatal("expected feasible fire")
	}
	if fire.Before(t0.Add(time.Second)) {
		t.Errorf("expected fire to wait for the oldest press to expire, got %v", fire)
	}
	// With the new press at fire, the window must hold at most 3.
	if n := e.windows[model.TriggerLeft].countAt(fire, e.lookback); n > 2 {
		t.Errorf("expected at most 2 existing presses at fire time, got %d", n)
	}
}

func TestEarliestFireHonorsTotalBudget(t *testing.T) {
	e := newTestEstimator(time.Second)
	e.Observe(press(model.TriggerLeft, t0))
	e.Observe(press(model.TriggerRight, t0.Add(5*time.Millisecond)))

	notBefore := t0.Add(10 * time.Millisecond)
	// Total budget 2: one existing press across all windows may remain.
	fire, ok := e.EarliestFire(model.TriggerLeft, notBefore, 10, 2)
	if !ok {
		t.Fatal("expected feasible fire")
	}
	if fire.Before(t0.Add(time.Second)) {
		t.Errorf("expected fire deferred past union expiry, got %v", fire)
	}
}

func TestEarliestFireInfeasibleBudget(t *testing.T) {
	e := newTestEstimator(time.Second)
	if _, ok := e.EarliestFire(model.TriggerLeft, t0, 0, 10); ok {
		t.Error("expected infeasible with zero trigger budget")
	}
	if _, ok := e.EarliestFire(model.TriggerLeft, t0, 10, 0); ok {
		t.Error("expected infeasible with zero total budget")
	}
}

func TestWindowCompaction(t *testing.T) {
	e := newTestEstimator(100 * time.Millisecond)
	// Push enough presses spread over time that eviction must compact the
	// backing slice without losing recent entries.
	for i := 0; i < 1000; i++ {
		at := t0.Add(time.Duration(i) * 10 * time.Millisecond)
		e.Observe(press(model.TriggerLeft, at))
		e.Estimate(model.TriggerLeft, at)
	}
	now := t0.Add(1000 * 10 * time.Millisecond)
	if cps := e.Estimate(model.TriggerLeft, now); cps != 90 {
		// 9 presses remain in the 100ms window: 9 / 0.1s.
		t.Errorf("expected 90 cps after sustained stream, got %v", cps)
	}
}
