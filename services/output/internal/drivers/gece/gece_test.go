package gece

import (
	"encoding/binary"
	"encoding/json"
	"testing"

	"lightcode-go/services/output/internal/core"
	"lightcode-go/services/output/internal/platform"
)

func newRig(t *testing.T) (*platform.FakeSerial, core.Driver) {
	t.Helper()
	sf := platform.NewFakeSerialFactory(0)
	reg := core.NewEngineRegistry(sf, nil, nil, nil)
	b, ok := core.LookupBuilder(core.TypeGECE)
	if !ok {
		t.Fatalf("gece builder not registered")
	}
	d := b(core.BuildInput{
		Port:    0,
		Desc:    core.Descriptor{Pin: 4, Serial: 0, SPI: core.EngineNone, I2C: core.EngineNone},
		Engines: reg,
		Type:    core.TypeGECE,
	})
	fake, _ := sf.Get(0)
	return fake, d
}

func apply(t *testing.T, d core.Driver, raw string) {
	t.Helper()
	if !d.ApplySettings(json.RawMessage(raw)) {
		t.Fatalf("settings rejected: %s", raw)
	}
}

func packet(t *testing.T, frame []byte, idx int) uint32 {
	t.Helper()
	off := idx * 4
	if off+4 > len(frame) {
		t.Fatalf("frame too short for bulb %d: %d bytes", idx, len(frame))
	}
	return binary.BigEndian.Uint32(frame[off : off+4])
}

func TestBeginConfiguresBulbLine(t *testing.T) {
	fake, d := newRig(t)
	d.Begin()
	defer d.Close()

	f := fake.Format
	if f.Baud != 300_000 || f.DataBits != 8 || f.StopBits != 1 {
		t.Fatalf("line format = %+v, want 300kBd 8N1", f)
	}
}

func TestPacketPacksAddressBrightnessAndNibbles(t *testing.T) {
	fake, d := newRig(t)
	d.Begin()
	defer d.Close()
	apply(t, d, `{"pixel_count":2}`)

	d.SetBuffer([]byte{0xF0, 0xA0, 0x50, 0, 0, 0})
	d.Render()

	frame := fake.LastWrite()
	if len(frame) != 8 {
		t.Fatalf("frame len = %d, want 8", len(frame))
	}

	v := packet(t, frame, 0)
	if addr := v >> 20 & 0x3F; addr != 0 {
		t.Fatalf("bulb 0 address = %d", addr)
	}
	if bright := v >> 12 & 0xFF; bright != 0xCC {
		t.Fatalf("brightness = %#x, want default cc", bright)
	}
	if blue := v >> 8 & 0x0F; blue != 0x5 {
		t.Fatalf("blue nibble = %#x, want 5", blue)
	}
	if green := v >> 4 & 0x0F; green != 0xA {
		t.Fatalf("green nibble = %#x, want a", green)
	}
	if red := v & 0x0F; red != 0xF {
		t.Fatalf("red nibble = %#x, want f", red)
	}

	if addr := packet(t, frame, 1) >> 20 & 0x3F; addr != 1 {
		t.Fatalf("bulb 1 address = %d, want 1", addr)
	}
}

func TestBrightnessSetting(t *testing.T) {
	fake, d := newRig(t)
	d.Begin()
	defer d.Close()
	apply(t, d, `{"pixel_count":1,"brightness":64}`)

	d.SetBuffer([]byte{0, 0, 0})
	d.Render()

	v := packet(t, fake.LastWrite(), 0)
	if bright := v >> 12 & 0xFF; bright != 64 {
		t.Fatalf("brightness = %d, want 64", bright)
	}
}

func TestColorOrderFeedsNibbleSlots(t *testing.T) {
	fake, d := newRig(t)
	d.Begin()
	defer d.Close()
	apply(t, d, `{"pixel_count":1,"color_order":"bgr"}`)

	// With bgr order the wire triple is (b, g, r); the packet's "red" slot
	// carries triple[0], so blue lands there.
	d.SetBuffer([]byte{0x10, 0x20, 0x30})
	d.Render()

	v := packet(t, fake.LastWrite(), 0)
	if low := v & 0x0F; low != 0x3 {
		t.Fatalf("first wire nibble = %#x, want 3 (blue)", low)
	}
	if high := v >> 8 & 0x0F; high != 0x1 {
		t.Fatalf("third wire nibble = %#x, want 1 (red)", high)
	}
}

func TestStringLengthCapsAtEnumerableAddresses(t *testing.T) {
	_, d := newRig(t)
	apply(t, d, `{"pixel_count":500}`)

	if n := d.ChannelsNeeded(); n != 63*3 {
		t.Fatalf("ChannelsNeeded = %d, want %d", n, 63*3)
	}
}

func TestDefaultsFillZeroValues(t *testing.T) {
	fake, d := newRig(t)
	d.Begin()
	defer d.Close()
	apply(t, d, `{}`)

	if n := d.ChannelsNeeded(); n != 10*3 {
		t.Fatalf("default demand = %d, want 30", n)
	}
	d.SetBuffer(make([]byte, 30))
	d.Render()
	if bright := packet(t, fake.LastWrite(), 0) >> 12 & 0xFF; bright != 0xCC {
		t.Fatalf("zero brightness not defaulted: %#x", bright)
	}
}

func TestUnderfedWindowGoesDark(t *testing.T) {
	fake, d := newRig(t)
	d.Begin()
	defer d.Close()
	apply(t, d, `{"pixel_count":2}`)

	d.SetBuffer([]byte{0xFF, 0xFF, 0xFF}) // one bulb's worth
	d.Render()

	v := packet(t, fake.LastWrite(), 1)
	if v&0xFFF != 0 {
		t.Fatalf("starved bulb carries color: %#x", v&0xFFF)
	}
}
