package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(2, 50, 1.0, 50)
	if len(s) != 50 {
		t.Fatalf("len = %d, want 50", len(s))
	}
	if math.Abs(s[0]) > 1e-15 || math.Abs(s[25]) > 1e-12 {
		t.Fatalf("zero crossings at 0 and 25: got %v, %v", s[0], s[25])
	}
}

func TestDeterministicNoiseReproducible(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 64)
	b := DeterministicNoise(42, 1.0, 64)
	c := DeterministicNoise(43, 1.0, 64)
	same := true
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("noise not deterministic at index %d", i)
		}
		if a[i] != c[i] {
			same = false
		}
	}
	if same {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestRicker(t *testing.T) {
	w := Ricker(5, 100, 41)
	if ArgMax(w) != 20 {
		t.Fatalf("Ricker peak at %d, want 20", ArgMax(w))
	}
	if math.Abs(w[20]-1) > 1e-15 {
		t.Fatalf("Ricker peak = %v, want 1", w[20])
	}
	for i := range 20 {
		if math.Abs(w[i]-w[40-i]) > 1e-15 {
			t.Fatalf("Ricker not symmetric at %d", i)
		}
	}
}

func TestEmbed(t *testing.T) {
	dst := make([]float64, 5)
	Embed(dst, []float64{1, 2, 3}, 3, 2)
	want := []float64{0, 0, 0, 2, 4}
	RequireSliceNearlyEqual(t, dst, want, 0)
}

func TestImpulseAndDC(t *testing.T) {
	imp := Impulse(8, 3)
	if ArgMax(imp) != 3 || imp[3] != 1 {
		t.Fatalf("impulse = %v", imp)
	}
	for i, v := range Impulse(4, 10) {
		if v != 0 {
			t.Fatalf("imp[%d] = %v, want all zeros for out-of-bounds pos", i, v)
		}
	}
	for i, v := range DC(0.5, 4) {
		if v != 0.5 {
			t.Fatalf("DC[%d] = %v, want 0.5", i, v)
		}
	}
}

func TestArgMaxFirstOfTies(t *testing.T) {
	if got := ArgMax([]float64{1, 3, 3, 2}); got != 1 {
		t.Fatalf("ArgMax = %d, want 1", got)
	}
	if got := ArgMax(nil); got != -1 {
		t.Fatalf("ArgMax(nil) = %d, want -1", got)
	}
}
