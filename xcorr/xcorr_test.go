package xcorr

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-mfdetect/internal/testutil"
)

type correlator func(template, continuous []float64) ([]float64, error)

var strategies = []struct {
	name string
	fn   correlator
}{
	{"direct", Direct},
	{"fft", FFT},
	{"auto", Correlate},
}

func TestAutoCorrelationPeaksAtOne(t *testing.T) {
	x := testutil.DeterministicNoise(1, 1, 300)
	for _, s := range strategies {
		t.Run(s.name, func(t *testing.T) {
			got, err := s.fn(x, x)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 1 {
				t.Fatalf("len = %d, want 1", len(got))
			}
			if math.Abs(got[0]-1) > 1e-9 {
				t.Fatalf("zero-lag NCC = %v, want 1", got[0])
			}
		})
	}
}

func TestEmbeddedTemplate(t *testing.T) {
	tmpl := testutil.Ricker(4, 100, 120)
	cont := testutil.DeterministicNoise(2, 0.3, 5000)
	copy(cont[3210:], tmpl)

	for _, s := range strategies {
		t.Run(s.name, func(t *testing.T) {
			got, err := s.fn(tmpl, cont)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(cont)-len(tmpl)+1 {
				t.Fatalf("len = %d, want %d", len(got), len(cont)-len(tmpl)+1)
			}
			if idx := testutil.ArgMax(got); idx != 3210 {
				t.Fatalf("peak at %d, want 3210", idx)
			}
			if math.Abs(got[3210]-1) > 1e-9 {
				t.Fatalf("peak = %v, want 1", got[3210])
			}
			testutil.RequireRange(t, got, -1, 1)
		})
	}
}

func TestFFTMatchesDirect(t *testing.T) {
	tests := []struct {
		name    string
		n, m    int
		seedT   int64
		seedC   int64
		withNaN bool
	}{
		{"short template", 40, 3000, 3, 4, false},
		{"long template", 700, 9000, 5, 6, false},
		{"continuous shorter than one block", 100, 400, 7, 8, false},
		{"exact block multiple", 25, 1000 + 24, 9, 10, false},
		{"with nan gap", 64, 6000, 11, 12, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := testutil.DeterministicNoise(tt.seedT, 1, tt.n)
			cont := testutil.DeterministicNoise(tt.seedC, 2, tt.m)
			if tt.withNaN {
				for i := 2000; i < 2100; i++ {
					cont[i] = math.NaN()
				}
			}

			want, err := Direct(tmpl, cont)
			if err != nil {
				t.Fatal(err)
			}
			got, err := FFT(tmpl, cont)
			if err != nil {
				t.Fatal(err)
			}
			testutil.RequireSliceNearlyEqual(t, got, want, 1e-9)
		})
	}
}

func TestScaleAndOffsetInvariance(t *testing.T) {
	tmpl := testutil.DeterministicNoise(13, 1, 80)
	cont := testutil.DeterministicNoise(14, 1, 2000)
	shifted := make([]float64, len(cont))
	for i, v := range cont {
		shifted[i] = 3*v + 5
	}

	a, err := Correlate(tmpl, cont)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Correlate(tmpl, shifted)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, b, a, 1e-9)
}

func TestDegenerateInputsGiveZero(t *testing.T) {
	noise := testutil.DeterministicNoise(15, 1, 2000)

	t.Run("constant continuous", func(t *testing.T) {
		for _, s := range strategies {
			got, err := s.fn(noise[:50], testutil.DC(4, 1000))
			if err != nil {
				t.Fatal(err)
			}
			testutil.RequireSliceNearlyEqual(t, got, make([]float64, len(got)), 0)
		}
	})

	t.Run("zero padded continuous", func(t *testing.T) {
		cont := make([]float64, 2000)
		copy(cont[1000:], noise[:1000])
		for _, s := range strategies {
			got, err := s.fn(noise[:50], cont)
			if err != nil {
				t.Fatal(err)
			}
			for k := range 951 {
				if got[k] != 0 {
					t.Fatalf("%s: lag %d over all-zero window = %v, want 0", s.name, k, got[k])
				}
			}
		}
	})

	t.Run("constant template", func(t *testing.T) {
		for _, s := range strategies {
			got, err := s.fn(testutil.DC(1, 50), noise)
			if err != nil {
				t.Fatal(err)
			}
			testutil.RequireSliceNearlyEqual(t, got, make([]float64, len(got)), 0)
		}
	})

	t.Run("nan template", func(t *testing.T) {
		tmpl := make([]float64, 50)
		for i := range tmpl {
			tmpl[i] = math.NaN()
		}
		for _, s := range strategies {
			got, err := s.fn(tmpl, noise)
			if err != nil {
				t.Fatal(err)
			}
			testutil.RequireSliceNearlyEqual(t, got, make([]float64, len(got)), 0)
		}
	})

	t.Run("nan window", func(t *testing.T) {
		cont := append([]float64(nil), noise...)
		cont[500] = math.NaN()
		for _, s := range strategies {
			got, err := s.fn(noise[:50], cont)
			if err != nil {
				t.Fatal(err)
			}
			for k := 451; k <= 500; k++ {
				if got[k] != 0 {
					t.Fatalf("%s: lag %d covers NaN, got %v", s.name, k, got[k])
				}
			}
			if got[450] == 0 || got[501] == 0 {
				t.Fatalf("%s: lags next to the NaN window were zeroed", s.name)
			}
		}
	})
}

func TestLengthErrors(t *testing.T) {
	for _, s := range strategies {
		t.Run(s.name, func(t *testing.T) {
			if _, err := s.fn(make([]float64, 10), make([]float64, 9)); !errors.Is(err, ErrLengthMismatch) {
				t.Fatalf("err = %v, want ErrLengthMismatch", err)
			}
			if _, err := s.fn(nil, make([]float64, 9)); !errors.Is(err, ErrEmptyTemplate) {
				t.Fatalf("err = %v, want ErrEmptyTemplate", err)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	tests := []struct {
		name string
		b    []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3, 4}, 1},
		{"inverted", []float64{4, 3, 2, 1}, -1},
		{"scaled and shifted", []float64{10, 12, 14, 16}, 1},
		{"constant", []float64{2, 2, 2, 2}, 0},
		{"nan", []float64{1, math.NaN(), 3, 4}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Window(a, tt.b); math.Abs(got-tt.want) > 1e-10 {
				t.Fatalf("Window = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReseedKeepsLongTracesAccurate(t *testing.T) {
	// Large DC offset stresses the running window sums.
	tmpl := testutil.DeterministicNoise(16, 1, 64)
	cont := testutil.DeterministicNoise(17, 1, 3*reseedInterval+100)
	for i := range cont {
		cont[i] += 1e4
	}
	got, err := FFT(tmpl, cont)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []int{0, reseedInterval - 1, 2*reseedInterval + 17, len(got) - 1} {
		want := Window(tmpl, cont[k:k+len(tmpl)])
		if math.Abs(got[k]-want) > 1e-4 {
			t.Fatalf("lag %d: got %v, want %v", k, got[k], want)
		}
	}
}

func TestQuietAfterLoudBurst(t *testing.T) {
	const burst = 400
	tmpl := testutil.DeterministicNoise(18, 1, 64)
	cont := testutil.DeterministicNoise(19, 1, 3000)
	for i := range burst {
		cont[i] *= 1e6
	}
	testutil.Embed(cont, tmpl, 2000, 3)

	for _, s := range strategies {
		t.Run(s.name, func(t *testing.T) {
			got, err := s.fn(tmpl, cont)
			if err != nil {
				t.Fatal(err)
			}
			for k := burst; k < len(got); k++ {
				want := Window(tmpl, cont[k:k+len(tmpl)])
				if math.Abs(got[k]-want) > 1e-6 {
					t.Fatalf("lag %d: got %v, want %v", k, got[k], want)
				}
			}
			if idx := testutil.ArgMax(got[burst:]) + burst; idx != 2000 {
				t.Fatalf("peak at %d, want 2000", idx)
			}
		})
	}
}

func TestFastSqrtKeepsNormalisation(t *testing.T) {
	for x := 1e-12; x < 1e12; x *= 7.3 {
		if rel := math.Abs(sqrtFast(x)-math.Sqrt(x)) / math.Sqrt(x); rel > 1e-11 {
			t.Fatalf("sqrtFast(%g) relative error %g", x, rel)
		}
	}

	prev := mathSqrt
	mathSqrt = sqrtFast
	t.Cleanup(func() { mathSqrt = prev })

	x := testutil.DeterministicNoise(20, 1, 300)
	tmpl := testutil.Ricker(4, 100, 120)
	cont := testutil.DeterministicNoise(21, 0.3, 5000)
	copy(cont[3210:], tmpl)
	for _, s := range strategies {
		t.Run(s.name, func(t *testing.T) {
			self, err := s.fn(x, x)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(self[0]-1) > 1e-9 {
				t.Fatalf("zero-lag NCC = %v, want 1", self[0])
			}
			got, err := s.fn(tmpl, cont)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got[3210]-1) > 1e-9 {
				t.Fatalf("peak = %v, want 1", got[3210])
			}
		})
	}
	if got := Window(x, x); math.Abs(got-1) > 1e-10 {
		t.Fatalf("Window = %v, want 1", got)
	}
}
