// Package mirror copies the software PWM thresholds into a PCA9632 so the
// colour can be observed (or driven) by a second, hardware PWM source.
package mirror

import (
	"context"
	"sync/atomic"
	"time"

	"rgbrelay/drivers/pca9632"
	"rgbrelay/services/rgb/internal/pwm"
	"rgbrelay/types"

	"tinygo.org/x/drivers"
)

const DefaultInterval = 20 * time.Millisecond

type Device interface {
	SetRGB(r, g, b uint8) error
}

// Mirror polls the registers' generation and writes the current snapshot to
// the device when it has moved.
type Mirror struct {
	dev      Device
	regs     *pwm.Registers
	interval time.Duration

	writes atomic.Uint32
	errs   atomic.Uint32
}

func New(dev Device, regs *pwm.Registers, interval time.Duration) *Mirror {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Mirror{dev: dev, regs: regs, interval: interval}
}

// Open configures a PCA9632 on bus and returns it ready for New.
func Open(bus drivers.I2C, addr uint16, invert bool) (*pca9632.Device, error) {
	d := pca9632.New(bus)
	if err := d.Configure(pca9632.Config{Address: addr, Invert: invert}); err != nil {
		return nil, err
	}
	return &d, nil
}

// Sync writes the snapshot unconditionally.
func (m *Mirror) Sync() error {
	v := m.regs.Snapshot()
	return m.write(v)
}

func (m *Mirror) write(v types.RGBValue) error {
	if err := m.dev.SetRGB(v.Red, v.Green, v.Blue); err != nil {
		m.errs.Add(1)
		return err
	}
	m.writes.Add(1)
	return nil
}

// Run blocks until ctx is done. A failed write is retried on the next poll.
func (m *Mirror) Run(ctx context.Context) {
	t := time.NewTicker(m.interval)
	defer t.Stop()

	var last uint32
	dirty := true
	for {
		if g := m.regs.Generation(); g != last || dirty {
			last = g
			dirty = m.Sync() != nil
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func (m *Mirror) Writes() uint32 { return m.writes.Load() }
func (m *Mirror) Errors() uint32 { return m.errs.Load() }
