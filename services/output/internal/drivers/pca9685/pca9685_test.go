package pca9685

import (
	"bytes"
	"encoding/json"
	"testing"

	"lightcode-go/services/output/internal/core"
	"lightcode-go/services/output/internal/platform"
)

func newRig(t *testing.T) (*platform.FakeI2C, core.Driver) {
	t.Helper()
	bf := platform.NewFakeI2CFactory(0)
	reg := core.NewEngineRegistry(nil, nil, bf, nil)
	b, ok := core.LookupBuilder(core.TypePCA9685)
	if !ok {
		t.Fatalf("pca9685 builder not registered")
	}
	d := b(core.BuildInput{
		Port:    0,
		Desc:    core.Descriptor{Pin: -1, Serial: core.EngineNone, SPI: core.EngineNone, I2C: 0},
		Engines: reg,
		Type:    core.TypePCA9685,
	})
	fake, _ := bf.Get(0)
	return fake, d
}

func apply(t *testing.T, d core.Driver, raw string) {
	t.Helper()
	if !d.ApplySettings(json.RawMessage(raw)) {
		t.Fatalf("settings rejected: %s", raw)
	}
}

func regWrites(fake *platform.FakeI2C, reg byte) [][]byte {
	var out [][]byte
	for _, w := range fake.Writes {
		if len(w.W) > 0 && w.W[0] == reg {
			out = append(out, w.W)
		}
	}
	return out
}

func TestBeginProgramsDefaultFrequency(t *testing.T) {
	fake, d := newRig(t)
	d.Begin()
	defer d.Close()

	// 200 Hz on the 25 MHz oscillator lands on prescale 30.
	ps := regWrites(fake, 0xFE)
	if len(ps) != 1 || ps[0][1] != 30 {
		t.Fatalf("prescale writes = %v, want one write of 30", ps)
	}

	last := fake.Writes[len(fake.Writes)-1].W
	if last[0] != 0x00 || last[1] != 0xA0 {
		t.Fatalf("final mode write = % x, want 00 a0 (restart)", last)
	}
}

func TestRenderMapsBytesToTwelveBitDuty(t *testing.T) {
	fake, d := newRig(t)
	apply(t, d, `{"channel_count":3}`)
	d.Begin()
	defer d.Close()

	base := len(fake.Writes)
	d.SetBuffer([]byte{0, 128, 255})
	d.Render()

	got := fake.Writes[base:]
	want := [][]byte{
		{0x06, 0, 0, 0x00, 0x00}, // 0 -> duty 0
		{0x0A, 0, 0, 0x07, 0x08}, // 128 -> duty 2055
		{0x0E, 0, 0, 0xFF, 0x0F}, // 255 -> duty 4095
	}
	if len(got) != len(want) {
		t.Fatalf("render wrote %d transactions, want %d", len(got), len(want))
	}
	for i := range want {
		if !bytes.Equal(got[i].W, want[i]) {
			t.Fatalf("write %d = % x, want % x", i, got[i].W, want[i])
		}
	}
}

func TestRenderSkipsUnchangedChannels(t *testing.T) {
	fake, d := newRig(t)
	apply(t, d, `{"channel_count":4}`)
	d.Begin()
	defer d.Close()

	win := []byte{10, 20, 30, 40}
	d.SetBuffer(win)
	d.Render()
	base := len(fake.Writes)

	d.Render() // identical frame
	if n := len(fake.Writes) - base; n != 0 {
		t.Fatalf("unchanged frame produced %d writes", n)
	}

	win[2] = 31
	d.Render()
	delta := fake.Writes[base:]
	if len(delta) != 1 || delta[0].W[0] != 0x06+4*2 {
		t.Fatalf("single-channel change wrote %v", delta)
	}
}

func TestCloseParksAllChannelsOff(t *testing.T) {
	bf := platform.NewFakeI2CFactory(0)
	reg := core.NewEngineRegistry(nil, nil, bf, nil)
	b, _ := core.LookupBuilder(core.TypePCA9685)
	desc := core.Descriptor{Pin: -1, Serial: core.EngineNone, SPI: core.EngineNone, I2C: 0}
	d := b(core.BuildInput{Port: 0, Desc: desc, Engines: reg, Type: core.TypePCA9685})
	fake, _ := bf.Get(0)

	d.Begin()
	d.Close()

	last, ok := fake.LastWrite()
	if !ok || !bytes.Equal(last.W, []byte{0xFA, 0, 0, 0, 0}) {
		t.Fatalf("close did not broadcast off: %v", last)
	}
	if _, err := reg.ClaimI2C(3, 0); err != nil {
		t.Fatalf("engine still held after Close: %v", err)
	}
}

func TestFrequencyChangeReprogramsLiveChip(t *testing.T) {
	fake, d := newRig(t)
	d.Begin()
	defer d.Close()

	apply(t, d, `{"frequency_hz":500}`)

	ps := regWrites(fake, 0xFE)
	if len(ps) != 2 || ps[1][1] != 11 {
		t.Fatalf("prescale writes = %v, want second write of 11", ps)
	}
}

func TestChannelCountClamps(t *testing.T) {
	_, d := newRig(t)
	apply(t, d, `{"channel_count":99}`)
	if n := d.ChannelsNeeded(); n != 16 {
		t.Fatalf("demand = %d, want 16", n)
	}
	apply(t, d, `{}`)
	if n := d.ChannelsNeeded(); n != 16 {
		t.Fatalf("default demand = %d, want 16", n)
	}
}
