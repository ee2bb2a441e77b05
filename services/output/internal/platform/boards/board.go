// services/output/internal/platform/boards/board.go
package boards

import "lightcode-go/services/output/internal/core"

// Board names a wiring profile: the fixed set of output ports and which
// engines each one is routed to. Port order here IS the slot order, so
// reordering a profile reshuffles every persisted document.
type Board struct {
	Name  string
	Ports []core.Descriptor
}

// Descriptors copies the port table so callers cannot mutate a profile.
func (b Board) Descriptors() []core.Descriptor {
	out := make([]core.Descriptor, len(b.Ports))
	copy(out, b.Ports)
	return out
}

var builtin = map[string]Board{}

func register(b Board) {
	if _, exists := builtin[b.Name]; exists {
		panic("board profile already registered: " + b.Name)
	}
	builtin[b.Name] = b
}

// Lookup finds a registered profile by name.
func Lookup(name string) (Board, bool) {
	b, ok := builtin[name]
	return b, ok
}

// Names lists every registered profile, for diagnostics.
func Names() []string {
	out := make([]string, 0, len(builtin))
	for n := range builtin {
		out = append(out, n)
	}
	return out
}
