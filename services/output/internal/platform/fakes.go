// services/output/internal/platform/fakes.go
package platform

import (
	"sync"

	"tinygo.org/x/drivers"

	"lightcode-go/services/output/internal/core"
	"lightcode-go/types"
)

// Inert engine implementations. The host provider hands these out where no
// real hardware is configured, and driver tests inspect what was written.

// ---- serial ----

// FakeSerial records everything written plus the last requested line format.
type FakeSerial struct {
	mu     sync.Mutex
	Format types.SerialFormat
	Writes [][]byte
}

func (s *FakeSerial) Configure(f types.SerialFormat) error {
	s.mu.Lock()
	s.Format = f
	s.mu.Unlock()
	return nil
}

func (s *FakeSerial) Write(b []byte) (int, error) {
	s.mu.Lock()
	s.Writes = append(s.Writes, append([]byte(nil), b...))
	s.mu.Unlock()
	return len(b), nil
}

// LastWrite returns the most recent frame, or nil.
func (s *FakeSerial) LastWrite() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Writes) == 0 {
		return nil
	}
	return s.Writes[len(s.Writes)-1]
}

func (s *FakeSerial) WriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Writes)
}

// FakeSerialFactory hands out stable ports per id.
type FakeSerialFactory struct {
	mu    sync.Mutex
	ports map[int]*FakeSerial
}

func NewFakeSerialFactory(ids ...int) *FakeSerialFactory {
	f := &FakeSerialFactory{ports: map[int]*FakeSerial{}}
	for _, id := range ids {
		f.ports[id] = &FakeSerial{}
	}
	return f
}

func (f *FakeSerialFactory) ByID(id int) (core.SerialPort, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.ports[id]
	if !ok {
		return nil, false
	}
	return p, true
}

// Get exposes the underlying fake for test assertions.
func (f *FakeSerialFactory) Get(id int) (*FakeSerial, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.ports[id]
	return p, ok
}

// ---- SPI ----

// FakeSPI implements drivers.SPI and records transmitted frames.
type FakeSPI struct {
	mu     sync.Mutex
	Writes [][]byte
}

func (s *FakeSPI) Tx(w, r []byte) error {
	s.mu.Lock()
	if len(w) > 0 {
		s.Writes = append(s.Writes, append([]byte(nil), w...))
	}
	s.mu.Unlock()
	for i := range r {
		r[i] = 0
	}
	return nil
}

func (s *FakeSPI) Transfer(b byte) (byte, error) {
	s.mu.Lock()
	s.Writes = append(s.Writes, []byte{b})
	s.mu.Unlock()
	return 0, nil
}

func (s *FakeSPI) LastWrite() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Writes) == 0 {
		return nil
	}
	return s.Writes[len(s.Writes)-1]
}

type FakeSPIFactory struct {
	mu    sync.Mutex
	buses map[int]*FakeSPI
}

func NewFakeSPIFactory(ids ...int) *FakeSPIFactory {
	f := &FakeSPIFactory{buses: map[int]*FakeSPI{}}
	for _, id := range ids {
		f.buses[id] = &FakeSPI{}
	}
	return f
}

func (f *FakeSPIFactory) ByID(id int) (drivers.SPI, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.buses[id]
	if !ok {
		return nil, false
	}
	return b, true
}

func (f *FakeSPIFactory) Get(id int) (*FakeSPI, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.buses[id]
	return b, ok
}

// ---- I2C ----

// FakeI2C implements drivers.I2C and records the last transaction per address.
type FakeI2C struct {
	mu     sync.Mutex
	Writes []I2CWrite
}

type I2CWrite struct {
	Addr uint16
	W    []byte
}

func (b *FakeI2C) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	if len(w) > 0 {
		b.Writes = append(b.Writes, I2CWrite{Addr: addr, W: append([]byte(nil), w...)})
	}
	b.mu.Unlock()
	for i := range r {
		r[i] = 0
	}
	return nil
}

func (b *FakeI2C) LastWrite() (I2CWrite, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Writes) == 0 {
		return I2CWrite{}, false
	}
	return b.Writes[len(b.Writes)-1], true
}

type FakeI2CFactory struct {
	mu    sync.Mutex
	buses map[int]*FakeI2C
}

func NewFakeI2CFactory(ids ...int) *FakeI2CFactory {
	f := &FakeI2CFactory{buses: map[int]*FakeI2C{}}
	for _, id := range ids {
		f.buses[id] = &FakeI2C{}
	}
	return f
}

func (f *FakeI2CFactory) ByID(id int) (drivers.I2C, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.buses[id]
	if !ok {
		return nil, false
	}
	return b, true
}

func (f *FakeI2CFactory) Get(id int) (*FakeI2C, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.buses[id]
	return b, ok
}

// ---- GPIO ----

// FakePin implements core.GPIOPin for hosts and tests.
type FakePin struct {
	mu      sync.RWMutex
	number  int
	level   bool
	modeOut bool
}

func (p *FakePin) Number() int { return p.number }

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	p.modeOut = true
	p.level = initial
	p.mu.Unlock()
	return nil
}

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	p.level = level
	p.mu.Unlock()
}

func (p *FakePin) Get() bool {
	p.mu.RLock()
	v := p.level
	p.mu.RUnlock()
	return v
}

// FakePinFactory returns stable *FakePin instances per number.
type FakePinFactory struct {
	mu   sync.Mutex
	pins map[int]*FakePin
}

func NewFakePinFactory() *FakePinFactory {
	return &FakePinFactory{pins: map[int]*FakePin{}}
}

func (f *FakePinFactory) ByNumber(n int) (core.GPIOPin, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pins[n]
	if !ok {
		p = &FakePin{number: n}
		f.pins[n] = p
	}
	return p, true
}

// Get exposes the underlying *FakePin for tests.
func (f *FakePinFactory) Get(n int) (*FakePin, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pins[n]
	return p, ok
}
