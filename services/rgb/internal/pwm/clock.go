package pwm

import (
	"context"
	"time"

	"rgbrelay/x/timex"
)

// Clock drives Engine.Tick at a fixed rate, standing in for the hardware
// timer. The PWM frequency is tickHz/Period.
type Clock struct {
	eng    *Engine
	period time.Duration
}

func NewClock(eng *Engine, tickHz uint32) *Clock {
	return &Clock{eng: eng, period: time.Duration(timex.PeriodFromHz(tickHz))}
}

// Interval is the time between ticks.
func (c *Clock) Interval() time.Duration { return c.period }

// Run ticks the engine until ctx is done, then deasserts all outputs.
// Ticks missed by a slow consumer are dropped, not replayed.
func (c *Clock) Run(ctx context.Context) {
	t := time.NewTicker(c.period)
	defer t.Stop()
	defer c.eng.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.eng.Tick()
		}
	}
}
