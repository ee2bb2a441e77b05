package pixel

import "testing"

func TestParseOrder(t *testing.T) {
	for _, s := range []string{"rgb", "rbg", "grb", "gbr", "brg", "bgr"} {
		if _, ok := ParseOrder(s); !ok {
			t.Errorf("order %q rejected", s)
		}
	}
	for _, s := range []string{"", "rg", "rrr", "RGB", "xyz"} {
		if _, ok := ParseOrder(s); ok {
			t.Errorf("order %q accepted", s)
		}
	}
}

func TestOrderLay(t *testing.T) {
	cases := []struct {
		order string
		want  [3]byte
	}{
		{"rgb", [3]byte{1, 2, 3}},
		{"grb", [3]byte{2, 1, 3}},
		{"bgr", [3]byte{3, 2, 1}},
		{"rbg", [3]byte{1, 3, 2}},
		{"gbr", [3]byte{2, 3, 1}},
		{"brg", [3]byte{3, 1, 2}},
	}
	for _, tc := range cases {
		o, ok := ParseOrder(tc.order)
		if !ok {
			t.Fatalf("order %q rejected", tc.order)
		}
		var dst [3]byte
		o.Lay(dst[:], 1, 2, 3)
		if dst != tc.want {
			t.Errorf("%s: Lay = %v, want %v", tc.order, dst, tc.want)
		}
	}
}

func TestZigMapSerpentine(t *testing.T) {
	// 8 pixels in rows of 4: second row reversed.
	want := []int{0, 1, 2, 3, 7, 6, 5, 4}
	for phys, w := range want {
		if got := ZigMap(phys, 4); got != w {
			t.Errorf("ZigMap(%d, 4) = %d, want %d", phys, got, w)
		}
	}
	// Third row runs forward again.
	if got := ZigMap(8, 4); got != 8 {
		t.Errorf("ZigMap(8, 4) = %d, want 8", got)
	}
}

func TestZigMapIdentity(t *testing.T) {
	for _, zig := range []int{0, 1} {
		for phys := 0; phys < 10; phys++ {
			if got := ZigMap(phys, zig); got != phys {
				t.Errorf("ZigMap(%d, %d) = %d, want identity", phys, zig, got)
			}
		}
	}
}

func TestGroupMap(t *testing.T) {
	if got := GroupMap(5, 0); got != 5 {
		t.Errorf("group 0: got %d, want identity", got)
	}
	if got := GroupMap(5, 1); got != 5 {
		t.Errorf("group 1: got %d, want identity", got)
	}
	// Groups of 3: physical 0,1,2 -> 0; 3,4,5 -> 1.
	for phys, want := range []int{0, 0, 0, 1, 1, 1, 2} {
		if got := GroupMap(phys, 3); got != want {
			t.Errorf("GroupMap(%d, 3) = %d, want %d", phys, got, want)
		}
	}
}
