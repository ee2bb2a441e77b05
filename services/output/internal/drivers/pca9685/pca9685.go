// services/output/internal/drivers/pca9685/pca9685.go
package pca9685

import (
	"encoding/json"

	"lightcode-go/drivers/pca9685"
	"lightcode-go/services/output/internal/core"
	"lightcode-go/x/mathx"
)

const (
	defaultChannels = pca9685.Channels
	defaultFreqHz   = 200
)

type settings struct {
	ChannelCount int    `json:"channel_count"`
	FrequencyHz  uint32 `json:"frequency_hz"`
	Address      uint16 `json:"address,omitempty"`
}

// Output maps channel bytes onto a PCA9685 PWM expander over an I2C engine:
// dimmers, servos, anything that wants 12-bit duty instead of a pixel wire.
type Output struct {
	port    int
	desc    core.Descriptor
	engines *core.EngineRegistry

	dev   pca9685.Device
	live  bool
	began bool

	cfg    settings
	win    []byte
	last   [pca9685.Channels]uint16
	frames uint32
	werrs  uint32
}

func init() {
	core.RegisterBuilder(core.TypePCA9685, func(in core.BuildInput) core.Driver {
		return &Output{
			port:    in.Port,
			desc:    in.Desc,
			engines: in.Engines,
			cfg:     settings{ChannelCount: defaultChannels, FrequencyHz: defaultFreqHz},
		}
	})
}

func (o *Output) Begin() {
	o.began = true
	o.setup()
}

func (o *Output) setup() {
	bus, err := o.engines.ClaimI2C(o.port, o.desc.I2C)
	if err != nil {
		o.live = false
		return
	}
	o.dev = pca9685.New(bus)
	cfg := pca9685.Config{FrequencyHz: o.cfg.FrequencyHz}
	if o.cfg.Address != 0 {
		cfg.Address = o.cfg.Address
	}
	if err := o.dev.Configure(cfg); err != nil {
		o.live = false
		return
	}
	o.live = true
	for i := range o.last {
		o.last[i] = 0xFFFF // force first refresh
	}
}

func (o *Output) Close() {
	if o.live {
		_ = o.dev.AllOff()
	}
	o.engines.ReleaseI2C(o.port, o.desc.I2C)
	o.live = false
	o.began = false
}

func (o *Output) Type() core.OutputType { return core.TypePCA9685 }
func (o *Output) Name() string          { return core.TypePCA9685.String() }

func (o *Output) ChannelsNeeded() int  { return o.cfg.ChannelCount }
func (o *Output) SetBuffer(win []byte) { o.win = win }

func (o *Output) ApplySettings(raw json.RawMessage) bool {
	var s settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	if s.ChannelCount == 0 {
		s.ChannelCount = defaultChannels
	}
	s.ChannelCount = mathx.Clamp(s.ChannelCount, 1, pca9685.Channels)
	if s.FrequencyHz == 0 {
		s.FrequencyHz = defaultFreqHz
	}
	reconfig := s.FrequencyHz != o.cfg.FrequencyHz || s.Address != o.cfg.Address
	o.cfg = s
	if o.began && reconfig {
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
	return struct {
		ID          int    `json:"id"`
		Type        string `json:"type"`
		Channels    int    `json:"channels"`
		Frames      uint32 `json:"frames"`
		WriteErrors uint32 `json:"write_errors"`
		EngineOK    bool   `json:"engine_ok"`
	}{o.port, o.Name(), o.cfg.ChannelCount, o.frames, o.werrs, o.live}
}

func (o *Output) Render() {
	if !o.live || len(o.win) == 0 {
		return
	}
	for ch := 0; ch < o.cfg.ChannelCount && ch < len(o.win); ch++ {
		duty := mathx.MapU16(uint16(o.win[ch]), 0, 255, 0, 4095)
		if duty == o.last[ch] {
			continue
		}
		if err := o.dev.SetPWM(uint8(ch), 0, duty); err != nil {
			o.werrs++
			continue
		}
		o.last[ch] = duty
	}
	o.frames++
}
