// x/strconvx/strconvx_mcu.go
//go:build rp2040 || rp2350

package strconvx

// strconv replacements sized for TinyGo firmware. Only the calls the tree
// actually makes are mirrored; bases 2..36, decimal Atoi, and plain 'f'
// float formatting.

const digits = "0123456789abcdefghijklmnopqrstuvwxyz"

type convError string

func (e convError) Error() string { return string(e) }

const (
	errSyntax = convError("invalid syntax")
	errRange  = convError("value out of range")
)

func Itoa(i int) string { return FormatInt(int64(i), 10) }

func FormatInt(i int64, base int) string {
	if i >= 0 {
		return FormatUint(uint64(i), base)
	}
	return "-" + FormatUint(uint64(-i), base)
}

func FormatUint(u uint64, base int) string {
	if base < 2 || base > 36 {
		base = 10
	}
	var buf [64]byte
	w := len(buf)
	b := uint64(base)
	for {
		w--
		buf[w] = digits[u%b]
		u /= b
		if u == 0 {
			break
		}
	}
	return string(buf[w:])
}

// Atoi parses decimal only, like strconv.Atoi without base prefixes.
func Atoi(s string) (int, error) {
	const maxInt = int64(^uint(0) >> 1)

	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if len(s) == 0 {
		return 0, errSyntax
	}

	var v int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, errSyntax
		}
		v = v*10 + int64(c-'0')
		if v > maxInt+1 || (v > maxInt && !neg) {
			return 0, errRange
		}
	}
	if neg {
		return int(-v), nil
	}
	return int(v), nil
}

// FormatFloat covers the plain decimal form. Any verb renders as 'f';
// negative precision falls back to six digits. Not for round-tripping.
func FormatFloat(f float64, _ byte, prec, _ int) string {
	if prec < 0 {
		prec = 6
	}
	neg := f < 0
	if neg {
		f = -f
	}

	whole := uint64(f)
	if prec > 0 {
		scale := uint64(1)
		for i := 0; i < prec; i++ {
			scale *= 10
		}
		frac := uint64((f-float64(whole))*float64(scale) + 0.5)
		if frac >= scale {
			// Fraction rounded all the way up.
			whole++
			frac = 0
		}

		fs := FormatUint(frac, 10)
		pad := make([]byte, 0, prec+1)
		for i := len(fs); i < prec; i++ {
			pad = append(pad, '0')
		}
		out := FormatUint(whole, 10) + "." + string(pad) + fs
		if neg {
			return "-" + out
		}
		return out
	}

	if f-float64(whole) >= 0.5 {
		whole++
	}
	out := FormatUint(whole, 10)
	if neg {
		return "-" + out
	}
	return out
}
