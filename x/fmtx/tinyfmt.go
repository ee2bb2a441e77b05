// x/fmtx/tinyfmt.go
package fmtx

import "lightcode-go/x/strconvx"

// The tiny formatter backs MCU builds, where fmt costs too much flash. It
// covers the verbs firmware logging emits: %s %q %d %x %X %t %v %%, plus
// width (space padding) and precision (truncation) for strings. Widths count
// bytes, not runes. A verb with no argument left renders literally so a bad
// format string stays diagnosable on a serial console.

func tinySprintf(format string, args []any) string {
	out := make([]byte, 0, len(format)+16)
	next := 0
	for i := 0; i < len(format); {
		if format[i] != '%' {
			out = append(out, format[i])
			i++
			continue
		}
		i++
		if i < len(format) && format[i] == '%' {
			out = append(out, '%')
			i++
			continue
		}

		width, prec := -1, -1
		i, width = scanNum(format, i)
		if i < len(format) && format[i] == '.' {
			i, prec = scanNum(format, i+1)
			if prec < 0 {
				prec = 0
			}
		}
		if i >= len(format) {
			out = append(out, '%')
			break
		}
		verb := format[i]
		i++

		if next >= len(args) {
			out = append(out, '%', verb)
			continue
		}
		out = appendVerb(out, verb, args[next], width, prec)
		next++
	}
	return string(out)
}

func tinySprint(args []any) string {
	var out []byte
	for i, a := range args {
		if i > 0 {
			out = append(out, ' ')
		}
		out = appendValue(out, a)
	}
	return string(out)
}

func scanNum(s string, i int) (int, int) {
	n, start := 0, i
	for i < len(s) && '0' <= s[i] && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	if i == start {
		return i, -1
	}
	return i, n
}

func appendVerb(out []byte, verb byte, arg any, width, prec int) []byte {
	switch verb {
	case 's', 'q':
		s, ok := stringArg(arg)
		if !ok {
			return appendValue(out, arg)
		}
		if prec >= 0 && prec < len(s) {
			s = s[:prec]
		}
		if verb == 'q' {
			s = quoted(s)
		}
		for n := width - len(s); n > 0; n-- {
			out = append(out, ' ')
		}
		return append(out, s...)
	case 'd':
		if u, ok := uintArg(arg); ok {
			return append(out, strconvx.FormatUint(u, 10)...)
		}
		if i, ok := sintArg(arg); ok {
			return append(out, strconvx.FormatInt(i, 10)...)
		}
		return appendValue(out, arg)
	case 'x', 'X':
		var h string
		if u, ok := uintArg(arg); ok {
			h = strconvx.FormatUint(u, 16)
		} else if i, ok := sintArg(arg); ok {
			h = strconvx.FormatInt(i, 16)
		} else {
			return appendValue(out, arg)
		}
		if verb == 'X' {
			h = upperHex(h)
		}
		return append(out, h...)
	case 't':
		if b, ok := arg.(bool); ok && b {
			return append(out, "true"...)
		}
		return append(out, "false"...)
	case 'v', 'w':
		// %w renders the wrapped error's text; errors.Unwrap has no
		// tiny-build support, so the chain flattens here.
		return appendValue(out, arg)
	default:
		return append(out, '%', verb)
	}
}

func appendValue(out []byte, arg any) []byte {
	switch v := arg.(type) {
	case string:
		return append(out, v...)
	case []byte:
		return append(out, v...)
	case bool:
		if v {
			return append(out, "true"...)
		}
		return append(out, "false"...)
	case error:
		return append(out, v.Error()...)
	case float32:
		return append(out, strconvx.FormatFloat(float64(v), 'f', 6, 32)...)
	case float64:
		return append(out, strconvx.FormatFloat(v, 'f', 6, 64)...)
	default:
		if u, ok := uintArg(arg); ok {
			return append(out, strconvx.FormatUint(u, 10)...)
		}
		if i, ok := sintArg(arg); ok {
			return append(out, strconvx.FormatInt(i, 10)...)
		}
		return append(out, "<?>"...)
	}
}

func stringArg(arg any) (string, bool) {
	switch v := arg.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}

func sintArg(arg any) (int64, bool) {
	switch v := arg.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

func uintArg(arg any) (uint64, bool) {
	switch v := arg.(type) {
	case uint:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case uint64:
		return v, true
	}
	return 0, false
}

func quoted(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			out = append(out, '\\', c)
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		case '\t':
			out = append(out, '\\', 't')
		default:
			out = append(out, c)
		}
	}
	return string(append(out, '"'))
}

func upperHex(h string) string {
	out := []byte(h)
	for i, c := range out {
		if 'a' <= c && c <= 'f' {
			out[i] = c - ('a' - 'A')
		}
	}
	return string(out)
}
