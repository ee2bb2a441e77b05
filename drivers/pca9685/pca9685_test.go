// drivers/pca9685/pca9685_test.go
package pca9685

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"tinygo.org/x/drivers"
)

// Compile-time check.
var _ drivers.I2C = (*fakeI2C)(nil)

// Recording fake: every write transaction is kept with its address.
type fakeI2C struct {
	mu     sync.Mutex
	writes []tx
	fail   bool
}

type tx struct {
	addr uint16
	w    []byte
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("nak")
	}
	if len(w) > 0 {
		f.writes = append(f.writes, tx{addr: addr, w: append([]byte(nil), w...)})
	}
	for i := range r {
		r[i] = 0
	}
	return nil
}

func (f *fakeI2C) regWrites(reg byte) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]byte
	for _, t := range f.writes {
		if len(t.w) > 0 && t.w[0] == reg {
			out = append(out, t.w)
		}
	}
	return out
}

func TestConfigureSequence(t *testing.T) {
	bus := &fakeI2C{}
	d := New(bus)
	if err := d.Configure(Config{FrequencyHz: 200}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	// round(25MHz / (4096*200)) - 1 = 30
	if d.Prescale() != 30 {
		t.Fatalf("prescale = %d, want 30", d.Prescale())
	}

	want := []struct {
		reg, val byte
	}{
		{0x00, 0x10},       // sleep
		{0xFE, 30},         // prescale
		{0x00, 0x20},       // auto-increment
		{0x01, 0x04},       // totem pole
		{0x00, 0x80 | 0x20}, // restart + auto-increment
	}
	if len(bus.writes) != len(want) {
		t.Fatalf("wrote %d registers, want %d", len(bus.writes), len(want))
	}
	for i, w := range want {
		got := bus.writes[i]
		if got.addr != Address {
			t.Fatalf("write %d addressed %#x, want %#x", i, got.addr, Address)
		}
		if got.w[0] != w.reg || got.w[1] != w.val {
			t.Fatalf("write %d = %#x<-%#x, want %#x<-%#x", i, got.w[0], got.w[1], w.reg, w.val)
		}
	}
}

func TestConfigureClampsPrescale(t *testing.T) {
	bus := &fakeI2C{}
	d := New(bus)

	if err := d.Configure(Config{FrequencyHz: 100_000}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if d.Prescale() != 0x03 {
		t.Fatalf("fast clamp = %d, want 3", d.Prescale())
	}

	if err := d.Configure(Config{FrequencyHz: 1}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if d.Prescale() != 0xFF {
		t.Fatalf("slow clamp = %d, want 255", d.Prescale())
	}
}

func TestConfigureAddressOverride(t *testing.T) {
	bus := &fakeI2C{}
	d := New(bus)
	if err := d.Configure(Config{Address: 0x41}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	for _, w := range bus.writes {
		if w.addr != 0x41 {
			t.Fatalf("write addressed %#x, want 0x41", w.addr)
		}
	}
}

func TestSetPWMPacksCounts(t *testing.T) {
	bus := &fakeI2C{}
	d := New(bus)
	if err := d.SetPWM(2, 0x123, 0x456); err != nil {
		t.Fatalf("SetPWM: %v", err)
	}

	// LED2 base register is 0x06 + 4*2, then ON low/high, OFF low/high.
	want := []byte{0x0E, 0x23, 0x01, 0x56, 0x04}
	if got := bus.writes[0].w; !bytes.Equal(got, want) {
		t.Fatalf("SetPWM wrote % x, want % x", got, want)
	}
}

func TestSetPWMRejectsBadChannel(t *testing.T) {
	d := New(&fakeI2C{})
	if err := d.SetPWM(16, 0, 0); !errors.Is(err, ErrChannel) {
		t.Fatalf("channel 16 error = %v, want ErrChannel", err)
	}
}

func TestAllOffUsesBroadcastRegister(t *testing.T) {
	bus := &fakeI2C{}
	d := New(bus)
	if err := d.AllOff(); err != nil {
		t.Fatalf("AllOff: %v", err)
	}
	want := []byte{0xFA, 0, 0, 0, 0}
	if got := bus.writes[0].w; !bytes.Equal(got, want) {
		t.Fatalf("AllOff wrote % x, want % x", got, want)
	}
}

func TestBusErrorsPropagate(t *testing.T) {
	bus := &fakeI2C{fail: true}
	d := New(bus)
	if err := d.Configure(); err == nil {
		t.Fatalf("Configure swallowed bus error")
	}
	if err := d.SetPWM(0, 0, 100); err == nil {
		t.Fatalf("SetPWM swallowed bus error")
	}
}
