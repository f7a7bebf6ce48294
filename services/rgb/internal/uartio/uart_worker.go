// services/rgb/internal/uartio/uart_worker.go
package uartio

import (
	"context"
	"errors"
	"sync"
	"time"

	"rgbrelay/services/rgb/internal/halcore"
)

// readSlice bounds each blocking read so cancellation is noticed promptly.
const readSlice = 250 * time.Millisecond

// errBackoff is the pause after a failed read.
const errBackoff = 50 * time.Millisecond

type ReaderCfg struct {
	Port     halcore.UARTPort
	MaxFrame int // clamp 16..256
	// OnByte is the byte-arrived handler. It is called from one goroutine
	// per registration, once per byte, in arrival order.
	OnByte func(b byte)
}

// Worker runs one reader goroutine per registered port.
type Worker struct {
	wg sync.WaitGroup
}

func New() *Worker { return &Worker{} }

// Register starts a bounded reader goroutine for a UART port. Returns cancel.
func (w *Worker) Register(ctx context.Context, cfg ReaderCfg) (func(), error) {
	if cfg.Port == nil || cfg.OnByte == nil {
		return nil, errors.New("uartio: port and handler required")
	}
	max := cfg.MaxFrame
	if max < 16 {
		max = 16
	}
	if max > 256 {
		max = 256
	}
	cctx, cancel := context.WithCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		buf := make([]byte, max)
		for {
			if cctx.Err() != nil {
				return
			}
			rctx, rcancel := context.WithTimeout(cctx, readSlice)
			n, err := cfg.Port.RecvSomeContext(rctx, buf)
			sliceEnded := rctx.Err() != nil
			rcancel()
			for i := 0; i < n; i++ {
				cfg.OnByte(buf[i])
			}
			// A port fault returns at once; wait before retrying so the
			// reader cannot starve the PWM clock.
			if n == 0 && err != nil && !sliceEnded {
				select {
				case <-cctx.Done():
					return
				case <-time.After(errBackoff):
				}
			}
		}
	}()

	return cancel, nil
}

// Wait blocks until every reader goroutine has returned.
func (w *Worker) Wait() { w.wg.Wait() }
