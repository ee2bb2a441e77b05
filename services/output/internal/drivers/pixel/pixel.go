// services/output/internal/drivers/pixel/pixel.go

// Package pixel holds the little pieces every pixel-strand driver shares:
// color-order permutation and the group/zigzag strand layout mapping.
package pixel

// Order places a source R,G,B triple into a 3-byte wire slot.
type Order struct {
	r, g, b int
}

var orders = map[string]Order{
	"rgb": {0, 1, 2},
	"rbg": {0, 2, 1},
	"grb": {1, 0, 2},
	"gbr": {2, 0, 1},
	"brg": {1, 2, 0},
	"bgr": {2, 1, 0},
}

// ParseOrder accepts the six three-letter permutations.
func ParseOrder(s string) (Order, bool) {
	o, ok := orders[s]
	return o, ok
}

// DefaultOrder is plain RGB.
func DefaultOrder() Order { return orders["rgb"] }

// Lay writes the triple into dst[0:3] in wire order.
func (o Order) Lay(dst []byte, r, g, b byte) {
	dst[o.r] = r
	dst[o.g] = g
	dst[o.b] = b
}

// ZigMap folds a physical strand position through a serpentine layout: every
// second row of zig pixels runs backwards. zig < 2 means no folding.
func ZigMap(phys, zig int) int {
	if zig < 2 {
		return phys
	}
	row := phys / zig
	if row%2 == 0 {
		return phys
	}
	col := phys % zig
	return row*zig + (zig - 1 - col)
}

// GroupMap collapses group adjacent pixels onto one source pixel. group < 2
// is the identity.
func GroupMap(phys, group int) int {
	if group < 2 {
		return phys
	}
	return phys / group
}
