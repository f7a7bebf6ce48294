// services/rgb/internal/platform/factories_host.go
//go:build !rp2040 && !rp2350

package platform

import (
	"context"
	"sync"

	"rgbrelay/errcode"
	"rgbrelay/services/rgb/internal/halcore"

	"tinygo.org/x/drivers"
)

// HostPlatform holds the inert host-side factories with their concrete types
// so tests and the simulator can drive them.
type HostPlatform struct {
	Pins  *HostPinFactory
	UARTs *HostUARTFactory
	I2C   *HostI2CFactory
}

func NewHostPlatform() *HostPlatform {
	return &HostPlatform{
		Pins:  &HostPinFactory{pins: make(map[int]*FakePin)},
		UARTs: &HostUARTFactory{ports: map[string]*HostUART{"uart0": NewHostUART(), "uart1": NewHostUART()}},
		I2C:   &HostI2CFactory{buses: map[string]*HostI2C{"i2c0": {}, "i2c1": {}}},
	}
}

func (h *HostPlatform) Platform() halcore.Platform {
	return halcore.Platform{Pins: h.Pins, UARTs: h.UARTs, I2C: h.I2C}
}

// DefaultPlatform provides host factories.
func DefaultPlatform() halcore.Platform { return NewHostPlatform().Platform() }

// ----------------------------- I²C (host) ------------------------------------

// HostI2C implements tinygo drivers.I2C for host-side tests.
type HostI2C struct {
	mu     sync.Mutex
	writes []I2CWrite
	Err    error // returned by Tx when set
}

type I2CWrite struct {
	Addr uint16
	W    []byte
}

func (h *HostI2C) Tx(addr uint16, w, r []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Err != nil {
		return h.Err
	}
	if len(w) > 0 {
		h.writes = append(h.writes, I2CWrite{Addr: addr, W: append([]byte(nil), w...)})
	}
	for i := range r {
		r[i] = 0
	}
	return nil
}

// SetErr makes every following Tx fail with err (nil clears it).
func (h *HostI2C) SetErr(err error) {
	h.mu.Lock()
	h.Err = err
	h.mu.Unlock()
}

// Writes returns a copy of every write transaction so far.
func (h *HostI2C) Writes() []I2CWrite {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]I2CWrite(nil), h.writes...)
}

type HostI2CFactory struct {
	buses map[string]*HostI2C
}

func (f *HostI2CFactory) ByID(id string) (drivers.I2C, bool) {
	b, ok := f.buses[id]
	if !ok {
		return nil, false
	}
	return b, true
}

// Get exposes the underlying *HostI2C for tests.
func (f *HostI2CFactory) Get(id string) (*HostI2C, bool) {
	b, ok := f.buses[id]
	return b, ok
}

// ----------------------------- GPIO (host) -----------------------------------

// FakePin implements GPIOPin for host-side tests.
type FakePin struct {
	mu      sync.RWMutex
	number  int
	level   bool
	modeOut bool
	edges   int // level changes while configured as output
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	p.modeOut = true
	p.level = initial
	p.mu.Unlock()
	return nil
}

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	if p.level != level {
		p.edges++
	}
	p.level = level
	p.mu.Unlock()
}

func (p *FakePin) Get() bool {
	p.mu.RLock()
	v := p.level
	p.mu.RUnlock()
	return v
}

func (p *FakePin) Number() int { return p.number }

// IsOutput reports whether ConfigureOutput was called.
func (p *FakePin) IsOutput() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modeOut
}

// Edges counts level changes.
func (p *FakePin) Edges() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.edges
}

// HostPinFactory returns stable *FakePin instances per number.
type HostPinFactory struct {
	mu   sync.Mutex
	pins map[int]*FakePin
}

func (f *HostPinFactory) ByNumber(n int) (halcore.GPIOPin, bool) {
	if n < 0 {
		return nil, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pins == nil {
		f.pins = make(map[int]*FakePin)
	}
	p, ok := f.pins[n]
	if !ok {
		p = &FakePin{number: n}
		f.pins[n] = p
	}
	return p, true
}

// Get exposes the underlying *FakePin for tests.
func (f *HostPinFactory) Get(n int) (*FakePin, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pins[n]
	return p, ok
}

// ----------------------------- UART (host) -----------------------------------

// HostUART is an in-memory UART: bytes injected with Inject are received,
// bytes written are recorded.
type HostUART struct {
	mu  sync.Mutex
	rx  []byte
	tx  []byte
	cfg halcore.UARTConfig
	rd  chan struct{}
}

func NewHostUART() *HostUART { return &HostUART{rd: make(chan struct{}, 1)} }

// Inject queues bytes as if they had arrived on the wire.
func (u *HostUART) Inject(p []byte) {
	u.mu.Lock()
	u.rx = append(u.rx, p...)
	u.mu.Unlock()
	select {
	case u.rd <- struct{}{}:
	default:
	}
}

func (u *HostUART) WriteByte(b byte) error {
	u.mu.Lock()
	u.tx = append(u.tx, b)
	u.mu.Unlock()
	return nil
}

func (u *HostUART) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		u.mu.Lock()
		n := copy(p, u.rx)
		u.rx = u.rx[n:]
		u.mu.Unlock()
		if n > 0 {
			return n, nil
		}
		select {
		case <-u.rd:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// Pending reports bytes injected but not yet received.
func (u *HostUART) Pending() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.rx)
}

// Sent returns a copy of everything written so far.
func (u *HostUART) Sent() []byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]byte(nil), u.tx...)
}

// Config returns the configuration passed to Open.
func (u *HostUART) Config() halcore.UARTConfig {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.cfg
}

type HostUARTFactory struct {
	ports map[string]*HostUART
}

func (f *HostUARTFactory) Open(id string, cfg halcore.UARTConfig) (halcore.UARTPort, error) {
	u, ok := f.ports[id]
	if !ok {
		return nil, errcode.UnknownBus
	}
	u.mu.Lock()
	u.cfg = cfg
	u.mu.Unlock()
	return u, nil
}

// Get exposes the underlying *HostUART for tests.
func (f *HostUARTFactory) Get(id string) (*HostUART, bool) {
	u, ok := f.ports[id]
	return u, ok
}
