// services/rgb/internal/halcore/types.go
package halcore

import (
	"context"

	"tinygo.org/x/drivers"
)

// ---- Buses ----

// I2CBusFactory injects configured I²C instances by id.
// Uses the TinyGo drivers.I2C interface to remain compatible on MCU builds.
type I2CBusFactory interface {
	ByID(id string) (drivers.I2C, bool)
}

// ---- GPIO abstractions ----

type GPIOPin interface {
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
	Number() int
}

// PinFactory supplies GPIO pins by the configured number scheme.
type PinFactory interface {
	ByNumber(n int) (GPIOPin, bool)
}

// ---------------- UART abstractions ----------------

type UARTPort interface {
	// TX: blocks until the byte is accepted by the driver.
	WriteByte(b byte) error

	// RX: blocks until at least one byte is available or ctx is done.
	RecvSomeContext(ctx context.Context, p []byte) (int, error)
}

type UARTConfig struct {
	Baud uint32
	TX   int
	RX   int
}

type UARTFactory interface {
	// Open configures and returns the UART named id ("uart0", "uart1").
	Open(id string, cfg UARTConfig) (UARTPort, error)
}

// Platform bundles the board factories handed to the RGB service.
type Platform struct {
	Pins  PinFactory
	UARTs UARTFactory
	I2C   I2CBusFactory
}
