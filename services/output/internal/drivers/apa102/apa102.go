// services/output/internal/drivers/apa102/apa102.go
package apa102

import (
	"encoding/json"

	"tinygo.org/x/drivers"

	"lightcode-go/services/output/internal/core"
	"lightcode-go/services/output/internal/drivers/pixel"
	"lightcode-go/x/mathx"
)

const (
	defaultPixels = 170
	maxPixels     = 1360

	// Global brightness is 5-bit, OR'd into the LED frame header.
	maxBrightness     = 31
	defaultBrightness = 31

	startFrameLen = 4
	ledFrameLen   = 4

	// APA102 wire order after the header byte is blue, green, red.
	defaultOrder = "bgr"
)

func nativeOrder() pixel.Order {
	o, _ := pixel.ParseOrder(defaultOrder)
	return o
}

type settings struct {
	PixelCount int    `json:"pixel_count"`
	ColorOrder string `json:"color_order"`
	Brightness uint8  `json:"brightness"`
}

// Output drives an APA102/SK9822 strand over an SPI engine.
type Output struct {
	port    int
	desc    core.Descriptor
	engines *core.EngineRegistry
	bus     drivers.SPI

	cfg    settings
	order  pixel.Order
	win    []byte
	frame  []byte
	frames uint32
	werrs  uint32
}

func init() {
	core.RegisterBuilder(core.TypeAPA102, func(in core.BuildInput) core.Driver {
		o := &Output{
			port:    in.Port,
			desc:    in.Desc,
			engines: in.Engines,
			cfg: settings{
				PixelCount: defaultPixels,
				ColorOrder: defaultOrder,
				Brightness: defaultBrightness,
			},
			order: nativeOrder(),
		}
		o.sizeFrame()
		return o
	})
}

func (o *Output) Begin() {
	b, err := o.engines.ClaimSPI(o.port, o.desc.SPI)
	if err != nil {
		o.bus = nil
		return
	}
	o.bus = b
}

func (o *Output) Close() {
	o.engines.ReleaseSPI(o.port, o.desc.SPI)
	o.bus = nil
}

func (o *Output) Type() core.OutputType { return core.TypeAPA102 }
func (o *Output) Name() string          { return core.TypeAPA102.String() }

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
	s.Brightness = mathx.Clamp(s.Brightness, 1, uint8(maxBrightness))
	if s.ColorOrder == "" {
		s.ColorOrder = defaultOrder
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
	}{o.port, o.Name(), o.cfg.PixelCount, o.frames, o.werrs, o.bus != nil}
}

func (o *Output) Render() {
	if o.bus == nil || len(o.win) == 0 {
		return
	}
	o.encode()
	if err := o.bus.Tx(o.frame, nil); err != nil {
		o.werrs++
		return
	}
	o.frames++
}

// endFrameLen: half a clock per pixel to push the last frame through the
// daisy chain.
func (o *Output) endFrameLen() int {
	n := int(mathx.CeilDiv(uint32(o.cfg.PixelCount), 16))
	if n == 0 {
		n = 1
	}
	return n
}

func (o *Output) sizeFrame() {
	n := startFrameLen + o.cfg.PixelCount*ledFrameLen + o.endFrameLen()
	if cap(o.frame) < n {
		o.frame = make([]byte, n)
	}
	o.frame = o.frame[:n]
}

func (o *Output) encode() {
	var triple [3]byte
	for i := 0; i < startFrameLen; i++ {
		o.frame[i] = 0x00
	}
	w := startFrameLen
	for p := 0; p < o.cfg.PixelCount; p++ {
		src := p * 3
		var r, g, b byte
		if src+2 < len(o.win) {
			r, g, b = o.win[src], o.win[src+1], o.win[src+2]
		}
		o.order.Lay(triple[:], r, g, b)
		o.frame[w] = 0xE0 | o.cfg.Brightness
		o.frame[w+1] = triple[0]
		o.frame[w+2] = triple[1]
		o.frame[w+3] = triple[2]
		w += ledFrameLen
	}
	for i := 0; i < o.endFrameLen(); i++ {
		o.frame[w+i] = 0x00
	}
}
