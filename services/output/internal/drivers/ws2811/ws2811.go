// services/output/internal/drivers/ws2811/ws2811.go
package ws2811

import (
	"encoding/json"

	"lightcode-go/services/output/internal/core"
	"lightcode-go/services/output/internal/drivers/pixel"
	"lightcode-go/types"
	"lightcode-go/x/mathx"
)

const (
	defaultPixels = 170
	maxPixels     = 1360

	// Two strand bits ride in each 6N1 UART frame at 3.2 MBd, so one
	// intensity byte expands to four wire bytes. Line idles inverted.
	wireBaud          = 3_200_000
	wireBytesPerValue = 4
)

// wireLUT encodes a 2-bit group, MSB-first, into one UART payload byte.
var wireLUT = [4]byte{0x37, 0x07, 0x34, 0x04}

type settings struct {
	PixelCount int    `json:"pixel_count"`
	ColorOrder string `json:"color_order"`
	GroupSize  int    `json:"group_size"`
	ZigSize    int    `json:"zig_size"`
}

// Output drives a WS2811/WS2812 strand through a serial engine.
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
	core.RegisterBuilder(core.TypeWS2811, func(in core.BuildInput) core.Driver {
		o := &Output{
			port:    in.Port,
			desc:    in.Desc,
			engines: in.Engines,
			cfg: settings{
				PixelCount: defaultPixels,
				ColorOrder: "rgb",
				GroupSize:  1,
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
	_ = o.out.Configure(types.SerialFormat{Baud: wireBaud, DataBits: 6, StopBits: 1})
}

func (o *Output) Close() {
	o.engines.ReleaseSerial(o.port, o.desc.Serial)
	o.out = nil
}

func (o *Output) Type() core.OutputType { return core.TypeWS2811 }
func (o *Output) Name() string          { return core.TypeWS2811.String() }

// logicalPixels is the source pixel count after grouping.
func (o *Output) logicalPixels() int {
	g := o.cfg.GroupSize
	if g < 1 {
		g = 1
	}
	return (o.cfg.PixelCount + g - 1) / g
}

func (o *Output) ChannelsNeeded() int  { return o.logicalPixels() * 3 }
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
	s.GroupSize = mathx.Clamp(s.GroupSize, 1, s.PixelCount)
	s.ZigSize = mathx.Clamp(s.ZigSize, 0, s.PixelCount)
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
	n := o.cfg.PixelCount * 3 * wireBytesPerValue
	if cap(o.frame) < n {
		o.frame = make([]byte, n)
	}
	o.frame = o.frame[:n]
}

// encode walks physical strand positions, folds them through the zigzag and
// group maps to find the source pixel, lays the triple out in color order,
// then expands every byte to wire bytes.
func (o *Output) encode() {
	var triple [3]byte
	w := 0
	for p := 0; p < o.cfg.PixelCount; p++ {
		src := pixel.GroupMap(pixel.ZigMap(p, o.cfg.ZigSize), o.cfg.GroupSize) * 3
		var r, g, b byte
		if src+2 < len(o.win) {
			r, g, b = o.win[src], o.win[src+1], o.win[src+2]
		}
		o.order.Lay(triple[:], r, g, b)
		for _, v := range triple {
			o.frame[w] = wireLUT[v>>6&0x03]
			o.frame[w+1] = wireLUT[v>>4&0x03]
			o.frame[w+2] = wireLUT[v>>2&0x03]
			o.frame[w+3] = wireLUT[v&0x03]
			w += 4
		}
	}
}
