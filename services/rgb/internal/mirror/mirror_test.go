package mirror

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rgbrelay/services/rgb/internal/pwm"
	"rgbrelay/types"
)

type fakeDev struct {
	mu   sync.Mutex
	last types.RGBValue
	n    int
	fail int
}

func (f *fakeDev) SetRGB(r, g, b uint8) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail > 0 {
		f.fail--
		return errors.New("nack")
	}
	f.last = types.RGBValue{Red: r, Green: g, Blue: b}
	f.n++
	return nil
}

func (f *fakeDev) get() (types.RGBValue, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last, f.n
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestMirror_FollowsRegisters(t *testing.T) {
	var regs pwm.Registers
	dev := &fakeDev{}
	m := New(dev, &regs, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	waitFor(t, func() bool { _, n := dev.get(); return n >= 1 })

	regs.Set(types.Red, 10)
	regs.Set(types.Green, 20)
	regs.Set(types.Blue, 30)
	want := types.RGBValue{Red: 10, Green: 20, Blue: 30}
	waitFor(t, func() bool { v, _ := dev.get(); return v == want })
}

func TestMirror_IdleDoesNotRewrite(t *testing.T) {
	var regs pwm.Registers
	dev := &fakeDev{}
	m := New(dev, &regs, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go m.Run(ctx)
	waitFor(t, func() bool { _, n := dev.get(); return n == 1 })
	time.Sleep(20 * time.Millisecond)
	cancel()

	if _, n := dev.get(); n != 1 {
		t.Fatalf("writes = %d, want 1 with no register changes", n)
	}
}

func TestMirror_RetriesAfterError(t *testing.T) {
	var regs pwm.Registers
	regs.Set(types.Blue, 99)
	dev := &fakeDev{fail: 2}
	m := New(dev, &regs, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	waitFor(t, func() bool { v, _ := dev.get(); return v.Blue == 99 })
	if m.Errors() != 2 {
		t.Fatalf("errors = %d, want 2", m.Errors())
	}
	if m.Writes() == 0 {
		t.Fatal("no successful writes recorded")
	}
}

func TestNew_DefaultInterval(t *testing.T) {
	m := New(&fakeDev{}, &pwm.Registers{}, 0)
	if m.interval != DefaultInterval {
		t.Fatalf("interval = %v", m.interval)
	}
}

type recBus struct{ writes [][]byte }

func (b *recBus) Tx(addr uint16, w, r []byte) error {
	b.writes = append(b.writes, append([]byte(nil), w...))
	return nil
}

func TestOpen_ConfiguresDevice(t *testing.T) {
	bus := &recBus{}
	d, err := Open(bus, 0x61, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if d.Address != 0x61 {
		t.Fatalf("addr = %#x", d.Address)
	}
	if len(bus.writes) != 4 {
		t.Fatalf("configure writes = %d, want 4", len(bus.writes))
	}
	// MODE2: totem-pole | INVRT
	if w := bus.writes[1]; w[0] != 0x01 || w[1] != 0x14 {
		t.Fatalf("mode2 write = %x", w)
	}
}
