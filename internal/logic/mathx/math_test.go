package mathx

import (
	"math"
	"testing"
)

func TestFloorDivMod(t *testing.T) {
	cases := []struct{ a, b, q, m int }{
		{0, 8, 0, 0},
		{7, 8, 0, 7},
		{8, 8, 1, 0},
		{-1, 8, -1, 7},
		{-8, 8, -1, 0},
		{-9, 8, -2, 7},
	}
	for _, c := range cases {
		if got := FloorDiv(c.a, c.b); got != c.q {
			t.Fatalf("FloorDiv(%d,%d)=%d want %d", c.a, c.b, got, c.q)
		}
		if got := Mod(c.a, c.b); got != c.m {
			t.Fatalf("Mod(%d,%d)=%d want %d", c.a, c.b, got, c.m)
		}
	}
}

func TestJitter2_DeterministicAndBounded(t *testing.T) {
	for x := -20; x <= 20; x++ {
		for z := -20; z <= 20; z++ {
			dx1, dz1 := Jitter2(42, x, z, 0.05)
			dx2, dz2 := Jitter2(42, x, z, 0.05)
			if dx1 != dx2 || dz1 != dz2 {
				t.Fatalf("jitter not deterministic at (%d,%d)", x, z)
			}
			if r := math.Hypot(dx1, dz1); r > 0.05+1e-12 {
				t.Fatalf("jitter radius %v exceeds bound at (%d,%d)", r, x, z)
			}
		}
	}
	if dx, dz := Jitter2(42, 3, 4, 0); dx != 0 || dz != 0 {
		t.Fatalf("zero radius should give zero jitter, got (%v,%v)", dx, dz)
	}
}

func TestClamp01(t *testing.T) {
	if Clamp01(-1) != 0 || Clamp01(2) != 1 || Clamp01(0.25) != 0.25 || Clamp01(math.NaN()) != 0 {
		t.Fatalf("Clamp01 mismatch")
	}
}
