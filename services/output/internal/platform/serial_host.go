// services/output/internal/platform/serial_host.go
//go:build !(rp2040 || rp2350)

package platform

import (
	"sync"

	"github.com/tarm/serial"

	"lightcode-go/services/output/internal/core"
	"lightcode-go/types"
	"lightcode-go/x/fmtx"
	"lightcode-go/x/strconvx"
)

// newHostSerialFactory wires each board serial id to either a tarm device
// port (when SerialDevs maps it) or a recording fake.
func newHostSerialFactory(ids []int, devs map[string]string) core.SerialFactory {
	f := &hostSerialFactory{ports: map[int]core.SerialPort{}}
	for _, id := range ids {
		if path, ok := devs[strconvx.Itoa(id)]; ok && path != "" {
			f.ports[id] = &tarmSerial{path: path}
			continue
		}
		f.ports[id] = &FakeSerial{}
	}
	return f
}

type hostSerialFactory struct {
	ports map[int]core.SerialPort
}

func (f *hostSerialFactory) ByID(id int) (core.SerialPort, bool) {
	p, ok := f.ports[id]
	return p, ok
}

// tarmSerial reopens the device on every Configure so format changes (DMX's
// 250000 8N2 vs Renard's 8N1) take effect atomically.
type tarmSerial struct {
	path string

	mu   sync.Mutex
	port *serial.Port
}

func (t *tarmSerial) Configure(f types.SerialFormat) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port != nil {
		t.port.Close()
		t.port = nil
	}
	cfg := &serial.Config{
		Name: t.path,
		Baud: int(f.Baud),
		Size: byte(f.DataBits),
	}
	switch f.Parity {
	case types.ParityEven:
		cfg.Parity = serial.ParityEven
	case types.ParityOdd:
		cfg.Parity = serial.ParityOdd
	default:
		cfg.Parity = serial.ParityNone
	}
	if f.StopBits == 2 {
		cfg.StopBits = serial.Stop2
	} else {
		cfg.StopBits = serial.Stop1
	}
	p, err := serial.OpenPort(cfg)
	if err != nil {
		return err
	}
	t.port = p
	return nil
}

func (t *tarmSerial) Write(b []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return 0, fmtx.Errorf("serial device %s not open", t.path)
	}
	return t.port.Write(b)
}
