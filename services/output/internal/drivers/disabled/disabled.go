// services/output/internal/drivers/disabled/disabled.go
package disabled

import (
	"encoding/json"

	"lightcode-go/services/output/internal/core"
)

// Output is the null driver. Every port can always carry it, so the channel
// factory uses it as the floor when a requested type cannot be built.
type Output struct {
	port int
}

func init() {
	core.RegisterBuilder(core.TypeDisabled, func(in core.BuildInput) core.Driver {
		return &Output{port: in.Port}
	})
}

func (o *Output) Begin()  {}
func (o *Output) Close()  {}
func (o *Output) Render() {}

func (o *Output) Type() core.OutputType { return core.TypeDisabled }
func (o *Output) Name() string          { return core.TypeDisabled.String() }

func (o *Output) ChannelsNeeded() int  { return 0 }
func (o *Output) SetBuffer(win []byte) {}

func (o *Output) ApplySettings(raw json.RawMessage) bool { return true }

func (o *Output) EmitSettings() json.RawMessage {
	return json.RawMessage(`{"type":"` + o.Name() + `"}`)
}

func (o *Output) Status() any {
	return struct {
		ID   int    `json:"id"`
		Type string `json:"type"`
	}{ID: o.port, Type: o.Name()}
}
