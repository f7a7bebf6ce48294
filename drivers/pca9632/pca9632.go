// Package pca9632 provides a minimal driver for the NXP PCA9632 4-channel
// I²C LED controller, used here as a hardware mirror of the three software
// PWM channels.
//
//	d := pca9632.New(bus)
//	err := d.Configure(pca9632.Config{})
//	err = d.SetRGB(r, g, b)
package pca9632

import (
	"errors"

	"tinygo.org/x/drivers"
)

// Address is the default 7-bit I²C address.
const Address = 0x62

// Registers.
const (
	regMode1  = 0x00
	regMode2  = 0x01
	regPWM0   = 0x02
	regGrpPWM = 0x06
	regLEDOut = 0x08

	autoIncrement = 0x80
)

// MODE2 bits.
const (
	mode2Invert = 0x10
	mode2OutDrv = 0x04 // totem-pole outputs
)

// ledOutPWM puts LED0..LED3 under individual PWM control.
const ledOutPWM = 0xAA

var (
	ErrChannel = errors.New("pca9632: channel out of range")
)

type Config struct {
	// Address defaults to 0x62 if zero.
	Address uint16
	// Invert flips the output polarity (MODE2.INVRT), e.g. for LEDs wired
	// to the supply rather than to ground.
	Invert bool
}

// Device wraps an I2C connection to a PCA9632.
type Device struct {
	bus     drivers.I2C
	Address uint16

	buf [5]byte // reuse buffer to avoid allocations
}

// New creates a Device. The I2C bus must already be configured; the chip is
// not touched until Configure.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, Address: Address}
}

// Configure wakes the oscillator, sets the output stage and enables per-LED
// PWM.
func (d *Device) Configure(cfg Config) error {
	if cfg.Address != 0 {
		d.Address = cfg.Address
	}
	mode2 := byte(mode2OutDrv)
	if cfg.Invert {
		mode2 |= mode2Invert
	}
	if err := d.writeReg(regMode1, 0x00); err != nil {
		return err
	}
	if err := d.writeReg(regMode2, mode2); err != nil {
		return err
	}
	if err := d.writeReg(regGrpPWM, 0xFF); err != nil {
		return err
	}
	return d.writeReg(regLEDOut, ledOutPWM)
}

// SetPWM sets one channel (0..3).
func (d *Device) SetPWM(ch int, duty uint8) error {
	if ch < 0 || ch > 3 {
		return ErrChannel
	}
	return d.writeReg(regPWM0+byte(ch), duty)
}

// SetRGB writes PWM0..PWM2 in one auto-increment transaction.
func (d *Device) SetRGB(r, g, b uint8) error {
	d.buf[0] = autoIncrement | regPWM0
	d.buf[1] = r
	d.buf[2] = g
	d.buf[3] = b
	return d.bus.Tx(d.Address, d.buf[:4], nil)
}

func (d *Device) writeReg(reg, val byte) error {
	d.buf[0] = reg
	d.buf[1] = val
	return d.bus.Tx(d.Address, d.buf[:2], nil)
}
