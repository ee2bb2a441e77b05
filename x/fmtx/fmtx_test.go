// x/fmtx/fmtx_test.go
package fmtx

import (
	"errors"
	"strings"
	"testing"
)

// The tiny core is untagged, so these run on the host against the exact code
// an MCU image carries.

func TestSprintfVerbGrid(t *testing.T) {
	for _, c := range []struct {
		format string
		args   []any
		want   string
	}{
		{"port %s up", []any{"ws2811"}, "port ws2811 up"},
		{"raw %s", []any{[]byte("frame")}, "raw frame"},
		{"%d frames", []any{1042}, "1042 frames"},
		{"level %d", []any{uint16(4095)}, "level 4095"},
		{"delta %d", []any{-3}, "delta -3"},
		{"%d", []any{uint64(18446744073709551615)}, "18446744073709551615"},
		{"hdr %x", []any{uint8(0x7f)}, "hdr 7f"},
		{"hdr %X", []any{uint8(0x7f)}, "hdr 7F"},
		{"off %x", []any{-255}, "off -ff"},
		{"off %X", []any{-255}, "off -FF"},
		{"paused=%t gamma=%t", []any{true, false}, "paused=true gamma=false"},
		{"100%% duty", nil, "100% duty"},
		{"name %q", []any{"main hall"}, `name "main hall"`},
	} {
		if got := tinySprintf(c.format, c.args); got != c.want {
			t.Errorf("tinySprintf(%q) = %q, want %q", c.format, got, c.want)
		}
	}
}

func TestSprintfCatchAllVerb(t *testing.T) {
	err := errors.New("pin busy")
	for _, c := range []struct {
		format string
		args   []any
		want   string
	}{
		{"%v", []any{"text"}, "text"},
		{"%v", []any{uint32(25000000)}, "25000000"},
		{"%v", []any{false}, "false"},
		{"%v", []any{err}, "pin busy"},
		{"%v", []any{1.5}, "1.500000"},
		{"%v", []any{float32(2.5)}, "2.500000"},
		{"%v", []any{struct{}{}}, "<?>"},
		{"open: %w", []any{err}, "open: pin busy"},
	} {
		if got := tinySprintf(c.format, c.args); got != c.want {
			t.Errorf("tinySprintf(%q, %v) = %q, want %q", c.format, c.args, got, c.want)
		}
	}
}

func TestSprintfWidthAndPrecision(t *testing.T) {
	for _, c := range []struct {
		format string
		arg    any
		want   string
	}{
		{"%8s", "hello", "   hello"},
		{"%3s", "hello", "hello"},
		{"%.3s", "abcdef", "abc"},
		{"%8.3s", "abcdef", "     abc"},
		{"%6q", "hi", `  "hi"`},
	} {
		if got := tinySprintf(c.format, []any{c.arg}); got != c.want {
			t.Errorf("tinySprintf(%q, %v) = %q, want %q", c.format, c.arg, got, c.want)
		}
	}
}

func TestSprintfQuoteEscapes(t *testing.T) {
	got := tinySprintf("%q", []any{"a\"b\\c\nd\te"})
	want := `"a\"b\\c\nd\te"`
	if got != want {
		t.Fatalf("quoted = %s, want %s", got, want)
	}
}

// A malformed format string must not corrupt output on a device where the
// only diagnostics channel is the log itself.
func TestSprintfDegradesVisibly(t *testing.T) {
	if got := tinySprintf("%d items %s", []any{5}); got != "5 items %s" {
		t.Fatalf("missing arg: got %q", got)
	}
	if got := tinySprintf("%z", []any{5}); got != "%z" {
		t.Fatalf("unknown verb: got %q", got)
	}
	if got := tinySprintf("done 100%", nil); got != "done 100%" {
		t.Fatalf("trailing percent: got %q", got)
	}
}

func TestSprintJoinsWithSpaces(t *testing.T) {
	if got := tinySprint([]any{"link"}); got != "link" {
		t.Fatalf("single arg: got %q", got)
	}
	if got := tinySprint([]any{"retry", 3, true}); got != "retry 3 true" {
		t.Fatalf("multi arg: got %q", got)
	}
	if got := tinySprint(nil); got != "" {
		t.Fatalf("no args: got %q", got)
	}
}

// Errorf must read the same from a host daemon and an MCU image; both builds
// go through Sprintf-compatible formatting underneath.
func TestErrorfAgreesAcrossBuilds(t *testing.T) {
	err := Errorf("board %q has no ports", "pico-w")
	if err == nil {
		t.Fatal("Errorf returned nil")
	}
	if got, want := err.Error(), `board "pico-w" has no ports`; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	wrapped := Errorf("load: %w", errors.New("short read"))
	if !strings.Contains(wrapped.Error(), "short read") {
		t.Fatalf("wrapped text lost: %q", wrapped.Error())
	}
}
