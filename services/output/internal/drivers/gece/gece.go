// services/output/internal/drivers/gece/gece.go
package gece

import (
	"encoding/json"

	"lightcode-go/services/output/internal/core"
	"lightcode-go/services/output/internal/drivers/pixel"
	"lightcode-go/types"
	"lightcode-go/x/mathx"
)

const (
	// GECE bulbs self-enumerate 6-bit addresses; a string tops out at 63.
	maxPixels     = 63
	defaultPixels = 10

	defaultBrightness = 0xCC

	wireBaud = 300_000

	// 26-bit bulb packet: addr(6) bright(8) blue(4) green(4) red(4),
	// packed MSB-first into four wire bytes.
	packetBytes = 4
)

type settings struct {
	PixelCount int    `json:"pixel_count"`
	ColorOrder string `json:"color_order"`
	Brightness uint8  `json:"brightness"`
}

// Output drives a GE Color Effects string through a serial engine.
type Output struct {
	port    int
	desc    core.Descriptor
	engines *core.EngineRegistry
	out     core.SerialPort

	cfg    settings
	order  pixel.Order
	win    []byte
	frame  []byte
	frames uint32
	werrs  uint32
}

func init() {
	core.RegisterBuilder(core.TypeGECE, func(in core.BuildInput) core.Driver {
		o := &Output{
			port:    in.Port,
			desc:    in.Desc,
			engines: in.Engines,
			cfg: settings{
				PixelCount: defaultPixels,
				ColorOrder: "rgb",
				Brightness: defaultBrightness,
			},
			order: pixel.DefaultOrder(),
		}
		o.sizeFrame()
		return o
	})
}

func (o *Output) Begin() {
	p, err := o.engines.ClaimSerial(o.port, o.desc.Serial)
	if err != nil {
		o.out = nil
		return
	}
	o.out = p
	_ = o.out.Configure(types.SerialFormat{Baud: wireBaud, DataBits: 8, StopBits: 1})
}

func (o *Output) Close() {
	o.engines.ReleaseSerial(o.port, o.desc.Serial)
	o.out = nil
}

func (o *Output) Type() core.OutputType { return core.TypeGECE }
func (o *Output) Name() string          { return core.TypeGECE.String() }

func (o *Output) ChannelsNeeded() int  { return o.cfg.PixelCount * 3 }
func (o *Output) SetBuffer(win []byte) { o.win = win }

func (o *Output) ApplySettings(raw json.RawMessage) bool {
	var s settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	if s.PixelCount == 0 {
		s.PixelCount = defaultPixels
	}
	s.PixelCount = mathx.Clamp(s.PixelCount, 1, maxPixels)
	if s.Brightness == 0 {
		s.Brightness = defaultBrightness
	}
	if s.ColorOrder == "" {
		s.ColorOrder = "rgb"
	}
	ord, ok := pixel.ParseOrder(s.ColorOrder)
	if !ok {
		return false
	}
	o.cfg = s
	o.order = ord
	o.sizeFrame()
	return true
}

func (o *Output) EmitSettings() json.RawMessage {
	raw, _ := json.Marshal(struct {
		Type string `json:"type"`
		settings
	}{Type: o.Name(), settings: o.cfg})
	return raw
}

func (o *Output) Status() any {
	return struct {
		ID          int    `json:"id"`
		Type        string `json:"type"`
		Pixels      int    `json:"pixels"`
		Frames      uint32 `json:"frames"`
		WriteErrors uint32 `json:"write_errors"`
		EngineOK    bool   `json:"engine_ok"`
	}{o.port, o.Name(), o.cfg.PixelCount, o.frames, o.werrs, o.out != nil}
}

func (o *Output) Render() {
	if o.out == nil || len(o.win) == 0 {
		return
	}
	o.encode()
	if _, err := o.out.Write(o.frame); err != nil {
		o.werrs++
		return
	}
	o.frames++
}

func (o *Output) sizeFrame() {
	n := o.cfg.PixelCount * packetBytes
	if cap(o.frame) < n {
		o.frame = make([]byte, n)
	}
	o.frame = o.frame[:n]
}

func (o *Output) encode() {
	var triple [3]byte
	for p := 0; p < o.cfg.PixelCount; p++ {
		src := p * 3
		var r, g, b byte
		if src+2 < len(o.win) {
			r, g, b = o.win[src], o.win[src+1], o.win[src+2]
		}
		o.order.Lay(triple[:], r, g, b)
		// Bulbs take 4-bit color; keep the top nibble of each intensity.
		v := uint32(p&0x3F)<<20 |
			uint32(o.cfg.Brightness)<<12 |
			uint32(triple[2]>>4)<<8 |
			uint32(triple[1]>>4)<<4 |
			uint32(triple[0]>>4)
		w := p * packetBytes
		o.frame[w] = byte(v >> 24)
		o.frame[w+1] = byte(v >> 16)
		o.frame[w+2] = byte(v >> 8)
		o.frame[w+3] = byte(v)
	}
}
