// services/output/internal/drivers/ws2801/ws2801.go
package ws2801

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
)

type settings struct {
	PixelCount int    `json:"pixel_count"`
	ColorOrder string `json:"color_order"`
}

// Output drives a WS2801 strand over an SPI engine. The protocol is bare
// shift-register bytes; the strand latches when the clock goes idle.
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
	core.RegisterBuilder(core.TypeWS2801, func(in core.BuildInput) core.Driver {
		o := &Output{
			port:    in.Port,
			desc:    in.Desc,
			engines: in.Engines,
			cfg:     settings{PixelCount: defaultPixels, ColorOrder: "rgb"},
			order:   pixel.DefaultOrder(),
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

func (o *Output) Type() core.OutputType { return core.TypeWS2801 }
func (o *Output) Name() string          { return core.TypeWS2801.String() }

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

func (o *Output) sizeFrame() {
	n := o.cfg.PixelCount * 3
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
		copy(o.frame[p*3:], triple[:])
	}
}
