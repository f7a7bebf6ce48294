package uartio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// --- minimal fake UART implementing halcore.UARTPort ---

type fakeUART struct {
	mu sync.Mutex
	rx []byte
	rd chan struct{}
}

func newFakeUART() *fakeUART { return &fakeUART{rd: make(chan struct{}, 1)} }

func (f *fakeUART) inject(b []byte) {
	f.mu.Lock()
	f.rx = append(f.rx, b...)
	f.mu.Unlock()
	select {
	case f.rd <- struct{}{}:
	default:
	}
}

func (f *fakeUART) WriteByte(byte) error { return nil }

func (f *fakeUART) read(p []byte) int {
	f.mu.Lock()
	n := copy(p, f.rx)
	f.rx = f.rx[n:]
	f.mu.Unlock()
	return n
}

func (f *fakeUART) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
	for {
		if n := f.read(p); n > 0 {
			return n, nil
		}
		select {
		case <-f.rd:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

type collector struct {
	mu  sync.Mutex
	got []byte
}

func (c *collector) add(b byte) {
	c.mu.Lock()
	c.got = append(c.got, b)
	c.mu.Unlock()
}

func (c *collector) waitLen(n int, d time.Duration) []byte {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		if len(c.got) >= n {
			out := append([]byte(nil), c.got...)
			c.mu.Unlock()
			return out
		}
		c.mu.Unlock()
		time.Sleep(time.Millisecond)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.got...)
}

// --- tests ---

func TestUARTWorker_DeliversBytesInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	u := newFakeUART()
	var c collector
	w := New()
	stop, err := w.Register(ctx, ReaderCfg{Port: u, MaxFrame: 16, OnByte: c.add})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	defer stop()

	u.inject([]byte("abc"))
	u.inject([]byte("defghijklmnopqrstuvwxyz")) // longer than one frame

	got := c.waitLen(26, time.Second)
	if string(got) != "abcdefghijklmnopqrstuvwxyz" {
		t.Fatalf("got %q", got)
	}
}

func TestUARTWorker_CancelStopsReader(t *testing.T) {
	u := newFakeUART()
	var c collector
	w := New()
	stop, err := w.Register(context.Background(), ReaderCfg{Port: u, OnByte: c.add})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	stop()
	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reader did not exit after cancel")
	}

	u.inject([]byte("x"))
	time.Sleep(20 * time.Millisecond)
	if got := c.waitLen(0, 0); len(got) != 0 {
		t.Fatalf("bytes delivered after cancel: %q", got)
	}
}

func TestUARTWorker_RequiresPortAndHandler(t *testing.T) {
	w := New()
	if _, err := w.Register(context.Background(), ReaderCfg{}); err == nil {
		t.Fatal("expected error without port")
	}
	if _, err := w.Register(context.Background(), ReaderCfg{Port: newFakeUART()}); err == nil {
		t.Fatal("expected error without handler")
	}
}

// faultyUART fails every read immediately.
type faultyUART struct{ calls atomic.Int32 }

func (f *faultyUART) WriteByte(byte) error { return nil }

func (f *faultyUART) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
	f.calls.Add(1)
	return 0, errors.New("uart fault")
}

func TestUARTWorker_BacksOffOnReadError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	u := &faultyUART{}
	w := New()
	if _, err := w.Register(ctx, ReaderCfg{Port: u, OnByte: func(byte) {}}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	time.Sleep(120 * time.Millisecond)
	cancel()
	w.Wait()

	// 120ms at one retry per errBackoff is 3; allow scheduling slack.
	if n := u.calls.Load(); n < 1 || n > 5 {
		t.Fatalf("RecvSomeContext calls = %d, want a handful", n)
	}
}

func TestUARTWorker_IdleSliceDoesNotDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	u := newFakeUART()
	var c collector
	w := New()
	if _, err := w.Register(ctx, ReaderCfg{Port: u, OnByte: c.add}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Let at least one read slice expire with nothing received.
	time.Sleep(readSlice + 20*time.Millisecond)
	start := time.Now()
	u.inject([]byte("z"))
	if got := c.waitLen(1, time.Second); string(got) != "z" {
		t.Fatalf("got %q", got)
	}
	if d := time.Since(start); d > readSlice/2 {
		t.Fatalf("byte after idle slice took %v", d)
	}
}
