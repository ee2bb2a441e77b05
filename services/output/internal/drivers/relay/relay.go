// services/output/internal/drivers/relay/relay.go
package relay

import (
	"encoding/json"

	"lightcode-go/services/output/internal/core"
)

const (
	bankSize = 8

	// Intensity at or above this drives the relay on.
	onThreshold = 128
)

type channel struct {
	GPIO   int  `json:"gpio"`
	Invert bool `json:"invert"`
}

type settings struct {
	Channels []channel `json:"channels"`
}

// Output drives a bank of relays, one channel byte per relay, straight off
// GPIO. It only ever runs on ports with no serial engine routed.
type Output struct {
	port    int
	engines *core.EngineRegistry

	cfg   settings
	pins  []core.GPIOPin
	began bool

	win    []byte
	frames uint32
}

func init() {
	core.RegisterBuilder(core.TypeRelay, func(in core.BuildInput) core.Driver {
		return &Output{port: in.Port, engines: in.Engines}
	})
}

func (o *Output) Begin() {
	o.began = true
	o.setup()
}

func (o *Output) Close() {
	o.teardown()
	o.began = false
}

func (o *Output) setup() {
	o.pins = make([]core.GPIOPin, len(o.cfg.Channels))
	for i, ch := range o.cfg.Channels {
		p, err := o.engines.ClaimPin(o.port, ch.GPIO)
		if err != nil {
			continue
		}
		// Start in the off state; invert flips the electrical level.
		if err := p.ConfigureOutput(ch.Invert); err != nil {
			o.engines.ReleasePin(o.port, ch.GPIO)
			continue
		}
		o.pins[i] = p
	}
}

func (o *Output) teardown() {
	for i, ch := range o.cfg.Channels {
		if i < len(o.pins) && o.pins[i] != nil {
			o.pins[i].Set(ch.Invert) // leave the relay off
			o.engines.ReleasePin(o.port, ch.GPIO)
		}
	}
	o.pins = nil
}

func (o *Output) Type() core.OutputType { return core.TypeRelay }
func (o *Output) Name() string          { return core.TypeRelay.String() }

func (o *Output) ChannelsNeeded() int  { return len(o.cfg.Channels) }
func (o *Output) SetBuffer(win []byte) { o.win = win }

func (o *Output) ApplySettings(raw json.RawMessage) bool {
	var s settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	if len(s.Channels) > bankSize {
		return false
	}
	seen := map[int]bool{}
	for _, ch := range s.Channels {
		if ch.GPIO < 0 || seen[ch.GPIO] {
			return false
		}
		seen[ch.GPIO] = true
	}
	if o.began {
		o.teardown()
	}
	o.cfg = s
	if o.began {
		o.setup()
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
	live := 0
	for _, p := range o.pins {
		if p != nil {
			live++
		}
	}
	return struct {
		ID       int    `json:"id"`
		Type     string `json:"type"`
		Channels int    `json:"channels"`
		Live     int    `json:"live"`
		Frames   uint32 `json:"frames"`
	}{o.port, o.Name(), len(o.cfg.Channels), live, o.frames}
}

func (o *Output) Render() {
	if len(o.win) == 0 || len(o.pins) == 0 {
		return
	}
	for i, ch := range o.cfg.Channels {
		if i >= len(o.win) || o.pins[i] == nil {
			continue
		}
		on := o.win[i] >= onThreshold
		if ch.Invert {
			on = !on
		}
		o.pins[i].Set(on)
	}
	o.frames++
}
