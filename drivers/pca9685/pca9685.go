// Package pca9685 provides a driver for the PCA9685 16-channel 12-bit PWM
// controller.
//
//	d := pca9685.New(bus)
//	err := d.Configure(pca9685.Config{FrequencyHz: 240})
//	err = d.SetPWM(0, 0, 2048) // channel 0 at 50%
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when
// both w and r are provided, without releasing the bus.
package pca9685

import (
	"errors"

	"tinygo.org/x/drivers"

	"lightcode-go/x/mathx"
)

// I2C address with all address pins low.
const Address = 0x40

// Channels on one chip.
const Channels = 16

// Registers and mode bits (per datasheet).
const (
	regMode1    = 0x00
	regMode2    = 0x01
	regLED0OnL  = 0x06
	regAllOnL   = 0xFA
	regPrescale = 0xFE

	mode1Sleep   = 0x10
	mode1AutoInc = 0x20
	mode1Restart = 0x80

	mode2OutDrv = 0x04

	// Internal oscillator feeding the prescaler.
	oscHz = 25_000_000

	// Prescale register limits from the datasheet.
	minPrescale = 0x03
	maxPrescale = 0xFF
)

// Errors returned by the driver.
var (
	ErrChannel  = errors.New("pca9685: channel out of range")
	ErrProtocol = errors.New("pca9685: protocol error")
)

// Config controls chip setup. All fields are optional.
type Config struct {
	// Address defaults to 0x40 if zero.
	Address uint16
	// FrequencyHz is the PWM period for all channels. The prescaler limits
	// it to roughly 24..1526 Hz; out-of-range values are clamped. Default
	// 200 Hz.
	FrequencyHz uint32
}

// Device wraps an I2C connection to a PCA9685 chip.
type Device struct {
	bus     drivers.I2C
	Address uint16

	prescale uint8
	buf      [5]byte // reuse buffer to avoid allocations
}

// New creates a new PCA9685 connection. The I2C bus must already be
// configured. This function only creates the Device object; it does not
// touch the chip.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, Address: Address}
}

// Configure puts the chip to sleep, programs the prescaler for the requested
// frequency, then restarts with register auto-increment enabled and
// totem-pole outputs.
func (d *Device) Configure(cfgs ...Config) error {
	var cfg Config
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	if cfg.Address != 0 {
		d.Address = cfg.Address
	}
	if cfg.FrequencyHz == 0 {
		cfg.FrequencyHz = 200
	}

	// prescale = round(osc / (4096 * freq)) - 1
	p := mathx.RoundDiv(uint32(oscHz), 4096*cfg.FrequencyHz)
	if p > 0 {
		p--
	}
	d.prescale = uint8(mathx.Clamp(p, minPrescale, maxPrescale))

	// The prescaler only loads while the chip sleeps.
	if err := d.writeReg(regMode1, mode1Sleep); err != nil {
		return err
	}
	if err := d.writeReg(regPrescale, d.prescale); err != nil {
		return err
	}
	if err := d.writeReg(regMode1, mode1AutoInc); err != nil {
		return err
	}
	if err := d.writeReg(regMode2, mode2OutDrv); err != nil {
		return err
	}
	return d.writeReg(regMode1, mode1Restart|mode1AutoInc)
}

// Prescale reports the last programmed prescaler value.
func (d *Device) Prescale() uint8 { return d.prescale }

// SetPWM programs one channel's on/off counts (12-bit, 0..4095).
func (d *Device) SetPWM(channel uint8, on, off uint16) error {
	if channel >= Channels {
		return ErrChannel
	}
	return d.writeOnOff(regLED0OnL+4*channel, on, off)
}

// SetAllPWM programs every channel in one transaction.
func (d *Device) SetAllPWM(on, off uint16) error {
	return d.writeOnOff(regAllOnL, on, off)
}

// Off turns one channel fully off.
func (d *Device) Off(channel uint8) error {
	return d.SetPWM(channel, 0, 0)
}

// AllOff turns every channel fully off.
func (d *Device) AllOff() error {
	return d.SetAllPWM(0, 0)
}

func (d *Device) writeReg(reg, val uint8) error {
	d.buf[0] = reg
	d.buf[1] = val
	return d.bus.Tx(d.Address, d.buf[:2], nil)
}

func (d *Device) writeOnOff(reg uint8, on, off uint16) error {
	d.buf[0] = reg
	d.buf[1] = byte(on)
	d.buf[2] = byte(on >> 8 & 0x0F)
	d.buf[3] = byte(off)
	d.buf[4] = byte(off >> 8 & 0x0F)
	return d.bus.Tx(d.Address, d.buf[:5], nil)
}
