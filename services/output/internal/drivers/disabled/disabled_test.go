package disabled

import (
	"encoding/json"
	"testing"

	"lightcode-go/services/output/internal/core"
)

func TestNullDriverIsAlwaysHappy(t *testing.T) {
	b, ok := core.LookupBuilder(core.TypeDisabled)
	if !ok {
		t.Fatalf("disabled builder not registered")
	}
	d := b(core.BuildInput{Port: 3, Type: core.TypeDisabled})

	if n := d.ChannelsNeeded(); n != 0 {
		t.Fatalf("null driver wants %d channels", n)
	}
	// Any record is acceptable; there is nothing to configure.
	if !d.ApplySettings(json.RawMessage(`{"pixel_count":4,"junk":true}`)) {
		t.Fatalf("null driver rejected a record")
	}
	if !d.ApplySettings(json.RawMessage(`{}`)) {
		t.Fatalf("null driver rejected empty record")
	}

	d.Begin()
	d.SetBuffer(nil)
	d.Render()
	d.Close()

	if got := string(d.EmitSettings()); got != `{"type":"Disabled"}` {
		t.Fatalf("EmitSettings = %s", got)
	}

	raw, _ := json.Marshal(d.Status())
	if string(raw) != `{"id":3,"type":"Disabled"}` {
		t.Fatalf("Status = %s", raw)
	}
}
