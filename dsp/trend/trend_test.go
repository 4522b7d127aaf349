package trend

import (
	"testing"

	"github.com/cwbudde/algo-mfdetect/internal/testutil"
)

func TestSimple(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{"empty", nil, []float64{}},
		{"single", []float64{5}, []float64{0}},
		{"ramp", []float64{1, 2, 3, 4}, []float64{0, 0, 0, 0}},
		{"ramp plus bump", []float64{0, 2, 2, 3}, []float64{0, 1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.RequireSliceNearlyEqual(t, Simple(tt.in), tt.want, 1e-12)
		})
	}
}

func TestSimpleIsIdempotent(t *testing.T) {
	x := testutil.DeterministicNoise(3, 1, 257)
	once := Simple(x)
	testutil.RequireSliceNearlyEqual(t, Simple(once), once, 1e-12)
}

func TestLinearRemovesRampAndOffset(t *testing.T) {
	x := make([]float64, 100)
	for i := range x {
		x[i] = 3 + 0.25*float64(i)
	}
	testutil.RequireSliceNearlyEqual(t, Linear(x), make([]float64, 100), 1e-9)
}

func TestDemean(t *testing.T) {
	testutil.RequireSliceNearlyEqual(t, Demean([]float64{1, 2, 3}), []float64{-1, 0, 1}, 1e-12)
}

func TestDoesNotModifyInput(t *testing.T) {
	x := []float64{1, 5, 2}
	_ = Simple(x)
	_ = Linear(x)
	_ = Demean(x)
	testutil.RequireSliceNearlyEqual(t, x, []float64{1, 5, 2}, 0)
}
