// x/mathx/mathx.go
package mathx

import "golang.org/x/exp/constraints"

// unsigned covers the integer widths firmware arithmetic runs on.
type unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Clamp pins v to [lo, hi]. Reversed bounds are swapped, not rejected, so
// callers can pass limits straight from untrusted settings.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

func Min[T constraints.Ordered](a, b T) T {
	if b < a {
		return b
	}
	return a
}

func Max[T constraints.Ordered](a, b T) T {
	if b > a {
		return b
	}
	return a
}

// CeilDiv divides rounding up. A zero divisor yields 0.
func CeilDiv[T unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// RoundDiv divides rounding to nearest. A zero divisor yields 0.
func RoundDiv[T unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b/2) / b
}

// MapU16 rescales x from [inMin, inMax] onto [outMin, outMax] using 32-bit
// intermediates and truncating division. x outside the input range pins to
// the matching output end; a degenerate input range yields outMin.
func MapU16(x, inMin, inMax, outMin, outMax uint16) uint16 {
	switch {
	case inMax == inMin, x <= inMin:
		return outMin
	case x >= inMax:
		return outMax
	}
	span := uint32(outMax-outMin) * uint32(x-inMin)
	return outMin + uint16(span/uint32(inMax-inMin))
}
