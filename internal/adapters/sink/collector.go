package sink

import (
	"context"
	"sync"

	"github.com/tsachs/pacer/internal/domain/model"
)

// Collector records everything the engine emits. Used by tests and by the
// clicksim verifier to inspect output streams after a run.
type Collector struct {
	mu          sync.Mutex
	clicks      []model.ClickEvent
	multipliers []float64
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) EmitClick(_ context.Context, ev model.ClickEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clicks = append(c.clicks, ev)
	return nil
}

func (c *Collector) ApplySensitivity(_ context.Context, multiplier float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.multipliers = append(c.multipliers, multiplier)
	return nil
}

// Clicks returns a copy of the recorded click events.
func (c *Collector) Clicks() []model.ClickEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.ClickEvent, len(c.clicks))
	copy(out, c.clicks)
	return out
}

// Presses returns only the recorded press events.
func (c *Collector) Presses() []model.ClickEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []model.ClickEvent
	for _, ev := range c.clicks {
		if ev.Kind == model.Press {
			out = append(out, ev)
		}
	}
	return out
}

// Multipliers returns a copy of the recorded sensitivity updates.
func (c *Collector) Multipliers() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]float64, len(c.multipliers))
	copy(out, c.multipliers)
	return out
}
