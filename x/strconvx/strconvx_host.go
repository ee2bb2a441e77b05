// x/strconvx/strconvx_host.go
//go:build !(rp2040 || rp2350)

package strconvx

import "strconv"

// Host builds use the real strconv. The MCU file mirrors these signatures
// with table-free internals; keep the two surfaces identical.

func Itoa(i int) string                  { return strconv.Itoa(i) }
func Atoi(s string) (int, error)         { return strconv.Atoi(s) }
func FormatInt(i int64, base int) string { return strconv.FormatInt(i, base) }

func FormatUint(u uint64, base int) string { return strconv.FormatUint(u, base) }

func FormatFloat(f float64, fmt byte, prec, bitSize int) string {
	return strconv.FormatFloat(f, fmt, prec, bitSize)
}
