// x/mathx/mathx_test.go
package mathx

import "testing"

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 10); got != 5 {
		t.Fatalf("in-range = %d", got)
	}
	if got := Clamp(-3, 0, 10); got != 0 {
		t.Fatalf("below = %d", got)
	}
	if got := Clamp(42, 0, 10); got != 10 {
		t.Fatalf("above = %d", got)
	}
	// Reversed bounds behave as if swapped.
	if got := Clamp(42, 10, 0); got != 10 {
		t.Fatalf("reversed bounds = %d", got)
	}
	if got := Clamp(uint16(5000), 0, 4095); got != 4095 {
		t.Fatalf("uint16 clamp = %d", got)
	}
}

func TestMinMax(t *testing.T) {
	if Min(3, 7) != 3 || Min(7, 3) != 3 {
		t.Fatal("Min")
	}
	if Max(3, 7) != 7 || Max(7, 3) != 7 {
		t.Fatal("Max")
	}
	if Min("a", "b") != "a" {
		t.Fatal("Min string")
	}
}

func TestCeilDiv(t *testing.T) {
	cases := []struct{ a, b, want uint }{
		{32, 16, 2},
		{33, 16, 3}, // one spare bit still costs a whole byte
		{0, 16, 0},
		{16, 16, 1},
		{5, 0, 0},
	}
	for _, c := range cases {
		if got := CeilDiv(c.a, c.b); got != c.want {
			t.Fatalf("CeilDiv(%d,%d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestRoundDiv(t *testing.T) {
	// The PWM prescale calculation leans on nearest rounding.
	if got := RoundDiv(uint32(25_000_000), 4096*200); got != 31 {
		t.Fatalf("prescale source = %d, want 31", got)
	}
	if got := RoundDiv(uint32(10), 4); got != 3 {
		t.Fatalf("10/4 = %d, want 3", got)
	}
	if got := RoundDiv(uint32(9), 4); got != 2 {
		t.Fatalf("9/4 = %d, want 2", got)
	}
	if got := RoundDiv(uint32(9), 0); got != 0 {
		t.Fatalf("zero divisor = %d", got)
	}
}

func TestMapU16(t *testing.T) {
	cases := []struct{ x, inMin, inMax, outMin, outMax, want uint16 }{
		{0, 0, 255, 0, 4095, 0},
		{128, 0, 255, 0, 4095, 2055}, // truncating, not rounding
		{255, 0, 255, 0, 4095, 4095},
		{300, 10, 20, 100, 200, 200}, // above input range pins high
		{3, 10, 20, 100, 200, 100},   // below pins low
		{7, 7, 7, 100, 200, 100},     // degenerate input range
	}
	for _, c := range cases {
		if got := MapU16(c.x, c.inMin, c.inMax, c.outMin, c.outMax); got != c.want {
			t.Fatalf("MapU16(%d,[%d,%d]->[%d,%d]) = %d, want %d",
				c.x, c.inMin, c.inMax, c.outMin, c.outMax, got, c.want)
		}
	}
}
