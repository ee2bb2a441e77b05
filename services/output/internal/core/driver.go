// services/output/internal/core/driver.go
package core

import (
	"encoding/json"

	"lightcode-go/x/fmtx"
)

// Driver is the capability contract every protocol implementation satisfies.
// One driver instance exclusively owns one port; the factory replaces it by
// calling Close before constructing a successor, so hardware lines are idle
// before reuse.
type Driver interface {
	// Begin is the idempotent hardware-init hook: engine claims and line
	// configuration happen here, never in the builder.
	Begin()
	// Close releases every engine claim Begin took. Render after Close is
	// undefined; the factory never does it.
	Close()
	// Render pushes the current buffer window down the wire once.
	Render()

	Type() OutputType
	Name() string

	// ChannelsNeeded is the byte demand used by the buffer partitioner.
	ChannelsNeeded() int
	// SetBuffer hands the driver its window. Zero-length windows are legal
	// and must render as no-ops.
	SetBuffer(win []byte)

	// ApplySettings consumes this driver's settings record and reports
	// whether it validated. Rejected records leave prior settings in place.
	ApplySettings(raw json.RawMessage) bool
	// EmitSettings reports the current settings record, including the
	// human-readable "type" name field.
	EmitSettings() json.RawMessage
	// Status reports a JSON-marshallable runtime snapshot.
	Status() any
}

// BuildInput is passed to a driver builder.
type BuildInput struct {
	Port    int
	Desc    Descriptor
	Engines *EngineRegistry
	// Type is the resolved output type. Builders registered for several
	// types (the serial family) switch their framing on it.
	Type OutputType
}

// Builder constructs a driver bound to one port.
type Builder func(in BuildInput) Driver

var builders = map[OutputType]Builder{}

// RegisterBuilder installs a builder for one output type. Drivers call it
// from init; double registration is a programming error.
func RegisterBuilder(t OutputType, b Builder) {
	if _, exists := builders[t]; exists {
		panic(fmtx.Sprintf("output driver already registered for type %s", t.String()))
	}
	builders[t] = b
}

func LookupBuilder(t OutputType) (Builder, bool) {
	b, ok := builders[t]
	return b, ok
}

// HasBuilder reports whether a type was compiled into this image.
func HasBuilder(t OutputType) bool {
	_, ok := builders[t]
	return ok
}
