package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a sine wave starting at phase zero.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates uniform white noise in [-amplitude, amplitude)
// from a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Ricker returns a Ricker (Mexican hat) wavelet of peak frequency freqHz,
// length samples long, with its peak at the centre sample.
func Ricker(freqHz, sampleRate float64, length int) []float64 {
	out := make([]float64, length)
	centre := float64(length-1) / 2
	for i := range out {
		t := (float64(i) - centre) / sampleRate
		a := math.Pi * freqHz * t
		a *= a
		out[i] = (1 - 2*a) * math.Exp(-a)
	}
	return out
}

// Embed adds src into dst starting at index at, clipping at the end of dst.
func Embed(dst, src []float64, at int, scale float64) {
	for i, v := range src {
		j := at + i
		if j < 0 || j >= len(dst) {
			continue
		}
		dst[j] += v * scale
	}
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// ArgMax returns the index of the first maximum of x, or -1 for empty x.
func ArgMax(x []float64) int {
	if len(x) == 0 {
		return -1
	}
	best := 0
	for i, v := range x {
		if v > x[best] {
			best = i
		}
	}
	return best
}
