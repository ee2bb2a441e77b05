// services/output/internal/core/engines.go
package core

import (
	"io"

	"tinygo.org/x/drivers"

	"lightcode-go/errcode"
	"lightcode-go/types"
)

// ---- Engine port abstractions ----

// SerialPort is a configurable byte sink: uartx UARTs on rp2 targets, tarm
// device files or fakes on hosts. Writes never block the render tick for
// long; slow sinks drop.
type SerialPort interface {
	Configure(f types.SerialFormat) error
	io.Writer
}

// GPIOPin is the minimal output-pin surface relay banks need.
type GPIOPin interface {
	Number() int
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
}

// ---- Factories (implemented per platform) ----

type SerialFactory interface {
	ByID(id int) (SerialPort, bool)
}

type SPIFactory interface {
	ByID(id int) (drivers.SPI, bool)
}

type I2CFactory interface {
	ByID(id int) (drivers.I2C, bool)
}

type PinFactory interface {
	ByNumber(n int) (GPIOPin, bool)
}

// ---- Claim-tracked registry ----

// EngineRegistry hands engines to drivers with exclusive claims, so a
// misconfigured document cannot route two ports onto one UART. All calls
// happen on the output service goroutine; there is no locking here.
type EngineRegistry struct {
	serial SerialFactory
	spi    SPIFactory
	i2c    I2CFactory
	pins   PinFactory

	serialClaims map[int]int // engine id -> port
	spiClaims    map[int]int
	i2cClaims    map[int]int
	pinClaims    map[int]int
}

func NewEngineRegistry(serial SerialFactory, spi SPIFactory, i2c I2CFactory, pins PinFactory) *EngineRegistry {
	return &EngineRegistry{
		serial:       serial,
		spi:          spi,
		i2c:          i2c,
		pins:         pins,
		serialClaims: map[int]int{},
		spiClaims:    map[int]int{},
		i2cClaims:    map[int]int{},
		pinClaims:    map[int]int{},
	}
}

func (r *EngineRegistry) ClaimSerial(port, id int) (SerialPort, error) {
	if r.serial == nil {
		return nil, errcode.UnknownEngine
	}
	p, ok := r.serial.ByID(id)
	if !ok {
		return nil, errcode.UnknownEngine
	}
	if owner, claimed := r.serialClaims[id]; claimed && owner != port {
		return nil, errcode.EngineInUse
	}
	r.serialClaims[id] = port
	return p, nil
}

func (r *EngineRegistry) ReleaseSerial(port, id int) {
	if owner, claimed := r.serialClaims[id]; claimed && owner == port {
		delete(r.serialClaims, id)
	}
}

func (r *EngineRegistry) ClaimSPI(port, id int) (drivers.SPI, error) {
	if r.spi == nil {
		return nil, errcode.UnknownEngine
	}
	p, ok := r.spi.ByID(id)
	if !ok {
		return nil, errcode.UnknownEngine
	}
	if owner, claimed := r.spiClaims[id]; claimed && owner != port {
		return nil, errcode.EngineInUse
	}
	r.spiClaims[id] = port
	return p, nil
}

func (r *EngineRegistry) ReleaseSPI(port, id int) {
	if owner, claimed := r.spiClaims[id]; claimed && owner == port {
		delete(r.spiClaims, id)
	}
}

func (r *EngineRegistry) ClaimI2C(port, id int) (drivers.I2C, error) {
	if r.i2c == nil {
		return nil, errcode.UnknownEngine
	}
	p, ok := r.i2c.ByID(id)
	if !ok {
		return nil, errcode.UnknownEngine
	}
	if owner, claimed := r.i2cClaims[id]; claimed && owner != port {
		return nil, errcode.EngineInUse
	}
	r.i2cClaims[id] = port
	return p, nil
}

func (r *EngineRegistry) ReleaseI2C(port, id int) {
	if owner, claimed := r.i2cClaims[id]; claimed && owner == port {
		delete(r.i2cClaims, id)
	}
}

func (r *EngineRegistry) ClaimPin(port, n int) (GPIOPin, error) {
	if r.pins == nil {
		return nil, errcode.UnknownEngine
	}
	p, ok := r.pins.ByNumber(n)
	if !ok {
		return nil, errcode.UnknownEngine
	}
	if owner, claimed := r.pinClaims[n]; claimed && owner != port {
		return nil, errcode.EngineInUse
	}
	r.pinClaims[n] = port
	return p, nil
}

func (r *EngineRegistry) ReleasePin(port, n int) {
	if owner, claimed := r.pinClaims[n]; claimed && owner == port {
		delete(r.pinClaims, n)
	}
}
