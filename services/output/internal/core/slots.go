package core

// Slot binds one port's static descriptor to whatever driver currently owns
// it. After manager startup a slot's Driver is never nil.
type Slot struct {
	Port   int
	Desc   Descriptor
	Driver Driver
}

// Table is the fixed array of port slots. Cardinality is set once from the
// board descriptor and never changes at runtime.
type Table struct {
	slots []Slot
}

func NewTable(descs []Descriptor) *Table {
	t := &Table{slots: make([]Slot, len(descs))}
	for i, d := range descs {
		t.slots[i] = Slot{Port: i, Desc: d}
	}
	return t
}

func (t *Table) Len() int { return len(t.slots) }

func (t *Table) InRange(port int) bool { return port >= 0 && port < len(t.slots) }

// CapabilityOf is a pure lookup; callers validate the range first.
func (t *Table) CapabilityOf(port int) Descriptor { return t.slots[port].Desc }

func (t *Table) CurrentDriver(port int) Driver { return t.slots[port].Driver }

// SetDriver is for the channel factory only.
func (t *Table) SetDriver(port int, d Driver) { t.slots[port].Driver = d }
