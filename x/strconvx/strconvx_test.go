// x/strconvx/strconvx_test.go
//
// These run against whichever implementation the build selects, so every
// expectation here must hold for strconv and for the MCU code alike.
package strconvx

import "testing"

func TestItoaAtoiRoundTrip(t *testing.T) {
	for _, v := range []int{0, 1, -1, 42, 512, -99999, 2147483647, -2147483648} {
		s := Itoa(v)
		got, err := Atoi(s)
		if err != nil {
			t.Fatalf("Atoi(%q): %v", s, err)
		}
		if got != v {
			t.Fatalf("round trip %d -> %q -> %d", v, s, got)
		}
	}
}

func TestAtoiAcceptsSigns(t *testing.T) {
	if v, err := Atoi("+7"); err != nil || v != 7 {
		t.Fatalf("Atoi(+7) = %d, %v", v, err)
	}
	if v, err := Atoi("-0"); err != nil || v != 0 {
		t.Fatalf("Atoi(-0) = %d, %v", v, err)
	}
}

func TestAtoiRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "+", "-", "12a", "0x10", " 5", "1.5", "99999999999999999999"} {
		if _, err := Atoi(s); err == nil {
			t.Fatalf("Atoi(%q) accepted", s)
		}
	}
}

func TestFormatUintBases(t *testing.T) {
	cases := []struct {
		u    uint64
		base int
		want string
	}{
		{0, 2, "0"},
		{5, 2, "101"},
		{255, 16, "ff"},
		{4095, 16, "fff"},
		{255, 10, "255"},
		{35, 36, "z"},
	}
	for _, c := range cases {
		if got := FormatUint(c.u, c.base); got != c.want {
			t.Fatalf("FormatUint(%d, %d) = %q, want %q", c.u, c.base, got, c.want)
		}
	}
}

func TestFormatIntNegatives(t *testing.T) {
	if got := FormatInt(-15, 10); got != "-15" {
		t.Fatalf("FormatInt(-15, 10) = %q", got)
	}
	if got := FormatInt(-255, 16); got != "-ff" {
		t.Fatalf("FormatInt(-255, 16) = %q", got)
	}
	if got := FormatInt(0, 10); got != "0" {
		t.Fatalf("FormatInt(0, 10) = %q", got)
	}
}

func TestFormatFloatPlainForm(t *testing.T) {
	cases := []struct {
		in   float64
		prec int
		want string
	}{
		{0, 0, "0"},
		{2, 0, "2"},
		{2.6, 0, "3"},
		{12.3, 1, "12.3"},
		{12.345, 2, "12.34"},
		{1.999, 2, "2.00"}, // fraction carries into the whole part
		{0.125, 3, "0.125"},
		{-0.5, 1, "-0.5"},
	}
	for _, c := range cases {
		if got := FormatFloat(c.in, 'f', c.prec, 64); got != c.want {
			t.Fatalf("FormatFloat(%v, 'f', %d) = %q, want %q", c.in, c.prec, got, c.want)
		}
	}
}
