package core

import "lightcode-go/x/mathx"

// Window is one port's slice of the shared buffer.
type Window struct {
	Off int
	Len int
}

// Partition divides buf among the table's drivers in port order. Each driver
// is granted min(need, remaining); once capacity runs out later ports get
// zero-length windows. Windows are disjoint and contiguous by construction.
// Returns the per-port windows, the total bytes used, and whether any port's
// demand was truncated.
func Partition(t *Table, buf []byte) (wins []Window, used int, overflow bool) {
	wins = make([]Window, t.Len())
	offset := 0
	for i := 0; i < t.Len(); i++ {
		drv := t.CurrentDriver(i)
		need := drv.ChannelsNeeded()
		if need < 0 {
			need = 0
		}
		grant := mathx.Min(need, len(buf)-offset)
		drv.SetBuffer(buf[offset : offset+grant])
		wins[i] = Window{Off: offset, Len: grant}
		if grant < need {
			overflow = true
		}
		offset += grant
	}
	return wins, offset, overflow
}
