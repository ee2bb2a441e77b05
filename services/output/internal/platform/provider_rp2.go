// services/output/internal/platform/provider_rp2.go
//go:build rp2040 || rp2350

package platform

import (
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers"

	"lightcode-go/services/output/internal/core"
	"lightcode-go/services/output/internal/platform/boards"
	"lightcode-go/types"
)

// NewProvider configures the RP2 engines the board routes: uartx UARTs with
// the port's data pin as TX, SPI0/SPI1 and I2C0/I2C1 on board-default pins.
func NewProvider(board boards.Board, cfg types.OutputSettings) *Provider {
	return &Provider{
		Serial: newRP2SerialFactory(board),
		SPI:    newRP2SPIFactory(),
		I2C:    newRP2I2CFactory(),
		Pins:   rp2PinFactory{},
	}
}

// ---- serial (uartx) ----

func newRP2SerialFactory(board boards.Board) core.SerialFactory {
	f := &rp2SerialFactory{ports: map[int]*rp2SerialPort{}}
	for _, d := range board.Ports {
		if !d.HasSerial() {
			continue
		}
		var hw *uartx.UART
		switch d.Serial {
		case 0:
			hw = uartx.UART0
		case 1:
			hw = uartx.UART1
		default:
			continue
		}
		// TX is the port's data pin. RX rides the adjacent pin of the same
		// mux group; the receive side goes unused.
		_ = hw.Configure(uartx.UARTConfig{
			BaudRate: 115200,
			TX:       machine.Pin(d.Pin),
			RX:       machine.Pin(d.Pin + 1),
		})
		f.ports[d.Serial] = &rp2SerialPort{u: hw}
	}
	return f
}

type rp2SerialFactory struct {
	ports map[int]*rp2SerialPort
}

func (f *rp2SerialFactory) ByID(id int) (core.SerialPort, bool) {
	p, ok := f.ports[id]
	if !ok {
		return nil, false
	}
	return p, true
}

type rp2SerialPort struct{ u *uartx.UART }

func (p *rp2SerialPort) Write(b []byte) (int, error) { return p.u.Write(b) }

func (p *rp2SerialPort) Configure(f types.SerialFormat) error {
	p.u.SetBaudRate(f.Baud)
	var par uartx.UARTParity
	switch f.Parity {
	case types.ParityEven:
		par = uartx.ParityEven
	case types.ParityOdd:
		par = uartx.ParityOdd
	default:
		par = uartx.ParityNone
	}
	return p.u.SetFormat(f.DataBits, f.StopBits, par)
}

// ---- SPI ----

func newRP2SPIFactory() core.SPIFactory {
	f := &rp2SPIFactory{buses: map[int]drivers.SPI{}}

	s0 := machine.SPI0
	_ = s0.Configure(machine.SPIConfig{
		Frequency: 4 * machine.MHz,
		SCK:       machine.SPI0_SCK_PIN,
		SDO:       machine.SPI0_SDO_PIN,
		SDI:       machine.SPI0_SDI_PIN,
	})
	f.buses[0] = s0

	s1 := machine.SPI1
	_ = s1.Configure(machine.SPIConfig{
		Frequency: 4 * machine.MHz,
		SCK:       machine.SPI1_SCK_PIN,
		SDO:       machine.SPI1_SDO_PIN,
		SDI:       machine.SPI1_SDI_PIN,
	})
	f.buses[1] = s1

	return f
}

type rp2SPIFactory struct {
	buses map[int]drivers.SPI
}

func (f *rp2SPIFactory) ByID(id int) (drivers.SPI, bool) {
	b, ok := f.buses[id]
	return b, ok
}

// ---- I2C ----

func newRP2I2CFactory() core.I2CFactory {
	f := &rp2I2CFactory{buses: map[int]drivers.I2C{}}

	b0 := machine.I2C0
	_ = b0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})
	f.buses[0] = b0

	b1 := machine.I2C1
	_ = b1.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C1_SDA_PIN,
		SCL:       machine.I2C1_SCL_PIN,
	})
	f.buses[1] = b1

	return f
}

type rp2I2CFactory struct {
	buses map[int]drivers.I2C
}

func (f *rp2I2CFactory) ByID(id int) (drivers.I2C, bool) {
	b, ok := f.buses[id]
	return b, ok
}

// ---- GPIO ----

type rp2PinFactory struct{}

func (rp2PinFactory) ByNumber(n int) (core.GPIOPin, bool) {
	// RP2 user GPIOs are GP0..GP28.
	if n < 0 || n > 28 {
		return nil, false
	}
	return &rp2Pin{p: machine.Pin(n), n: n}, true
}

type rp2Pin struct {
	p machine.Pin
	n int
}

func (r *rp2Pin) Number() int { return r.n }

func (r *rp2Pin) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

func (r *rp2Pin) Set(level bool) { r.p.Set(level) }
func (r *rp2Pin) Get() bool      { return r.p.Get() }
