// services/output/internal/drivers/serialout/serialout.go

// Package serialout covers the three raw-serial protocols: generic serial,
// Renard, and DMX512. They share claim, framing, and settings plumbing and
// differ only in line format and frame envelope.
package serialout

import (
	"encoding/json"

	"lightcode-go/services/output/internal/core"
	"lightcode-go/types"
	"lightcode-go/x/mathx"
)

type kind uint8

const (
	kindGeneric kind = iota
	kindRenard
	kindDMX
)

const (
	defaultBaud = 57600
	minBaud     = 9600
	maxBaud     = 460800

	maxChannels     = 2048
	defaultChannels = 64

	// DMX512 line format is fixed by the standard.
	dmxBaud     = 250_000
	dmxChannels = 512
	dmxStart    = 0x00

	renardSync = 0x7E
	renardPad  = 0x7D
	renardEsc  = 0x7F
	renardCmd  = 0x80
)

type settings struct {
	Baud     uint32 `json:"baudrate"`
	Channels int    `json:"num_channels"`
	Header   string `json:"header,omitempty"`
	Footer   string `json:"footer,omitempty"`
}

// Output pushes raw channel bytes down a serial engine with a per-protocol
// envelope.
type Output struct {
	port    int
	desc    core.Descriptor
	engines *core.EngineRegistry
	out     core.SerialPort
	k       kind
	t       core.OutputType

	cfg    settings
	win    []byte
	frame  []byte
	frames uint32
	werrs  uint32
}

func init() {
	core.RegisterBuilder(core.TypeSerial, build)
	core.RegisterBuilder(core.TypeRenard, build)
	core.RegisterBuilder(core.TypeDMX, build)
}

func build(in core.BuildInput) core.Driver {
	o := &Output{
		port:    in.Port,
		desc:    in.Desc,
		engines: in.Engines,
		t:       in.Type,
		cfg:     settings{Baud: defaultBaud, Channels: defaultChannels},
	}
	switch in.Type {
	case core.TypeRenard:
		o.k = kindRenard
	case core.TypeDMX:
		o.k = kindDMX
		o.cfg.Baud = dmxBaud
		o.cfg.Channels = dmxChannels
	default:
		o.k = kindGeneric
	}
	return o
}

func (o *Output) format() types.SerialFormat {
	if o.k == kindDMX {
		return types.SerialFormat{Baud: dmxBaud, DataBits: 8, StopBits: 2}
	}
	return types.SerialFormat{Baud: o.cfg.Baud, DataBits: 8, StopBits: 1}
}

func (o *Output) Begin() {
	p, err := o.engines.ClaimSerial(o.port, o.desc.Serial)
	if err != nil {
		o.out = nil
		return
	}
	o.out = p
	_ = o.out.Configure(o.format())
}

func (o *Output) Close() {
	o.engines.ReleaseSerial(o.port, o.desc.Serial)
	o.out = nil
}

func (o *Output) Type() core.OutputType { return o.t }
func (o *Output) Name() string          { return o.t.String() }

func (o *Output) ChannelsNeeded() int  { return o.cfg.Channels }
func (o *Output) SetBuffer(win []byte) { o.win = win }

func (o *Output) ApplySettings(raw json.RawMessage) bool {
	var s settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	if s.Channels == 0 {
		s.Channels = defaultChannels
	}
	switch o.k {
	case kindDMX:
		// The standard fixes the line; only the channel span is tunable.
		s.Baud = dmxBaud
		s.Channels = mathx.Clamp(s.Channels, 1, dmxChannels)
		s.Header, s.Footer = "", ""
	case kindRenard:
		if s.Baud == 0 {
			s.Baud = defaultBaud
		}
		s.Baud = mathx.Clamp(s.Baud, minBaud, maxBaud)
		s.Channels = mathx.Clamp(s.Channels, 1, maxChannels)
		s.Header, s.Footer = "", ""
	default:
		if s.Baud == 0 {
			s.Baud = defaultBaud
		}
		s.Baud = mathx.Clamp(s.Baud, minBaud, maxBaud)
		s.Channels = mathx.Clamp(s.Channels, 1, maxChannels)
	}
	o.cfg = s
	if o.out != nil {
		_ = o.out.Configure(o.format())
	}
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
		Channels    int    `json:"channels"`
		Baud        uint32 `json:"baudrate"`
		Frames      uint32 `json:"frames"`
		WriteErrors uint32 `json:"write_errors"`
		EngineOK    bool   `json:"engine_ok"`
	}{o.port, o.Name(), o.cfg.Channels, o.cfg.Baud, o.frames, o.werrs, o.out != nil}
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

func (o *Output) encode() {
	f := o.frame[:0]
	switch o.k {
	case kindDMX:
		f = append(f, dmxStart)
		f = append(f, o.win...)
	case kindRenard:
		f = append(f, renardSync, renardCmd)
		for _, v := range o.win {
			switch v {
			case renardPad:
				f = append(f, renardEsc, 0x2F)
			case renardSync:
				f = append(f, renardEsc, 0x30)
			case renardEsc:
				f = append(f, renardEsc, 0x31)
			default:
				f = append(f, v)
			}
		}
	default:
		f = append(f, o.cfg.Header...)
		f = append(f, o.win...)
		f = append(f, o.cfg.Footer...)
	}
	o.frame = f
}
