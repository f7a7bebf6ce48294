// Package pwm implements the software PWM engine that turns three duty
// thresholds into LED output levels.
//
// The engine mirrors a hardware timer in up-count mode: a counter runs
// 0..Period-1, a period-start event fires when it wraps to 0 and one
// compare-match event per channel fires when the counter equals that
// channel's threshold.
package pwm

import (
	"sync/atomic"

	"rgbrelay/types"
)

// Period is the number of counter ticks in one PWM period.
const Period = 255

// Output is a single binary output, e.g. a GPIO pin.
type Output interface {
	Set(level bool)
}

type Options struct {
	// ActiveLow inverts the physical level: an asserted channel drives its
	// output low. Common-anode LEDs are wired this way.
	ActiveLow bool
}

type Engine struct {
	regs      *Registers
	out       [types.NumChannels]Output
	activeLow bool

	// counter is owned by the goroutine calling Tick.
	counter uint32

	level   [types.NumChannels]atomic.Bool // logical (asserted) state
	periods atomic.Uint32
}

// NewEngine binds the shared registers to three outputs. A nil output is
// allowed; its level is still tracked. All channels start deasserted.
func NewEngine(regs *Registers, outs [types.NumChannels]Output, opts Options) *Engine {
	e := &Engine{
		regs:      regs,
		out:       outs,
		activeLow: opts.ActiveLow,
	}
	for ch := types.Channel(0); ch < types.NumChannels; ch++ {
		e.drive(ch, false)
	}
	return e
}

// OnPeriodStart asserts every channel with a nonzero threshold. Channels at
// zero are driven off so a threshold lowered to 0 mid-period cannot leave a
// channel stuck on.
func (e *Engine) OnPeriodStart() {
	for ch := types.Channel(0); ch < types.NumChannels; ch++ {
		e.drive(ch, e.regs.Get(ch) != 0)
	}
}

// OnChannelMatch deasserts ch unless its threshold is at full scale, in which
// case the channel stays on for the whole period.
func (e *Engine) OnChannelMatch(ch types.Channel) {
	if !ch.Valid() {
		return
	}
	if uint32(e.regs.Get(ch)) >= Period {
		return
	}
	e.drive(ch, false)
}

// Tick advances the counter by one and dispatches the events due at the new
// position, the way the timer interrupts would. Not safe for concurrent use.
func (e *Engine) Tick() {
	c := e.counter
	if c == 0 {
		e.periods.Add(1)
		e.OnPeriodStart()
	}
	for ch := types.Channel(0); ch < types.NumChannels; ch++ {
		// A zero threshold generates no match.
		if t := uint32(e.regs.Get(ch)); t != 0 && t == c {
			e.OnChannelMatch(ch)
		}
	}
	c++
	if c >= Period {
		c = 0
	}
	e.counter = c
}

// Counter returns the position the next Tick will process.
func (e *Engine) Counter() uint8 { return uint8(e.counter) }

// Asserted reports the logical state of ch.
func (e *Engine) Asserted(ch types.Channel) bool {
	if !ch.Valid() {
		return false
	}
	return e.level[ch].Load()
}

// Periods counts period-start events since construction.
func (e *Engine) Periods() uint32 { return e.periods.Load() }

// Stop deasserts all channels and rewinds the counter.
func (e *Engine) Stop() {
	for ch := types.Channel(0); ch < types.NumChannels; ch++ {
		e.drive(ch, false)
	}
	e.counter = 0
}

func (e *Engine) drive(ch types.Channel, on bool) {
	e.level[ch].Store(on)
	if o := e.out[ch]; o != nil {
		o.Set(on != e.activeLow)
	}
}
