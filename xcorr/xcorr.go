package xcorr

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-mfdetect/dsp/trend"
)

var (
	// ErrLengthMismatch indicates a template longer than the continuous data.
	ErrLengthMismatch = errors.New("xcorr: template longer than continuous data")
	// ErrEmptyTemplate indicates a zero-length template.
	ErrEmptyTemplate = errors.New("xcorr: empty template")
)

const (
	// directMaxTemplate is the longest template Correlate hands to Direct.
	directMaxTemplate = 32

	minFFTSize = 1024

	// Sliding window sums are recomputed from scratch this often to bound
	// accumulated rounding drift on day-long traces.
	reseedInterval = 4096

	// The sums are also recomputed once the window energy falls below this
	// fraction of its peak since the last recompute.
	reseedDrop = 1e-4

	// A window whose centred energy is below this fraction of its raw
	// energy is treated as constant.
	varianceFloor = 1e-12
)

// Correlate computes the sliding NCC of template against continuous,
// choosing the direct or FFT strategy by template length.
func Correlate(template, continuous []float64) ([]float64, error) {
	if len(template) <= directMaxTemplate {
		return Direct(template, continuous)
	}
	return FFT(template, continuous)
}

// Direct computes the sliding NCC with one dot product per lag.
func Direct(template, continuous []float64) ([]float64, error) {
	out, tc, tnorm, err := prepare(template, continuous)
	if err != nil || tc == nil {
		return out, err
	}

	c, nans := clean(continuous)
	n := len(tc)
	for k := range out {
		out[k] = vecmath.DotProduct(tc, c[k:k+n])
	}

	normalize(out, c, nans, n, tnorm)
	return out, nil
}

// FFT computes the sliding NCC using overlap-save block correlation.
func FFT(template, continuous []float64) ([]float64, error) {
	out, tc, tnorm, err := prepare(template, continuous)
	if err != nil || tc == nil {
		return out, err
	}

	c, nans := clean(continuous)
	n := len(tc)
	fftSize := max(nextPowerOf2(4*n), minFFTSize)
	step := fftSize - n + 1

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("xcorr: failed to create FFT plan: %w", err)
	}

	kernel := make([]complex128, fftSize)
	for i, v := range tc {
		kernel[i] = complex(v, 0)
	}

	kernelFFT := make([]complex128, fftSize)
	if err := plan.Forward(kernelFFT, kernel); err != nil {
		return nil, fmt.Errorf("xcorr: kernel FFT failed: %w", err)
	}
	for i, v := range kernelFFT {
		kernelFFT[i] = complex(real(v), -imag(v))
	}

	// The kernel is real, so correlating a+ib yields corr(a)+i*corr(b):
	// each transform carries two consecutive blocks.
	block := make([]complex128, fftSize)
	spec := make([]complex128, fftSize)
	for k0 := 0; k0 < len(out); k0 += 2 * step {
		k1 := k0 + step
		for m := range block {
			var re, im float64
			if j := k0 + m; j < len(c) {
				re = c[j]
			}
			if j := k1 + m; j < len(c) {
				im = c[j]
			}
			block[m] = complex(re, im)
		}

		if err := plan.Forward(spec, block); err != nil {
			return nil, fmt.Errorf("xcorr: forward FFT failed: %w", err)
		}
		for i := range spec {
			spec[i] *= kernelFFT[i]
		}
		if err := plan.Inverse(block, spec); err != nil {
			return nil, fmt.Errorf("xcorr: inverse FFT failed: %w", err)
		}

		for m := 0; m < step && k0+m < len(out); m++ {
			out[k0+m] = real(block[m])
		}
		for m := 0; m < step && k1+m < len(out); m++ {
			out[k1+m] = imag(block[m])
		}
	}

	normalize(out, c, nans, n, tnorm)
	return out, nil
}

// Window returns the NCC of two equal-length windows, or 0 when either is
// degenerate. Slices of different length are compared over the shorter.
func Window(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	a, b = a[:n], b[:n]

	ma, va := centredEnergy(a)
	mb, vb := centredEnergy(b)
	if math.IsNaN(va) || math.IsNaN(vb) || va <= 0 || vb <= 0 {
		return 0
	}

	var num float64
	for i := range a {
		num += (a[i] - ma) * (b[i] - mb)
	}
	return clamp(num / mathSqrt(va*vb))
}

// prepare validates shapes and returns the zeroed output buffer plus the
// demeaned template and its norm. A nil template with a nil error means the
// template is degenerate and the all-zero output is final.
func prepare(template, continuous []float64) (out, tc []float64, tnorm float64, err error) {
	n := len(template)
	if n == 0 {
		return nil, nil, 0, ErrEmptyTemplate
	}
	if n > len(continuous) {
		return nil, nil, 0, fmt.Errorf("%w: template %d > continuous %d", ErrLengthMismatch, n, len(continuous))
	}

	out = make([]float64, len(continuous)-n+1)

	_, energy := centredEnergy(template)
	if math.IsNaN(energy) || energy <= 0 {
		return out, nil, 0, nil
	}
	return out, trend.Demean(template), mathSqrt(energy), nil
}

// centredEnergy returns the mean of x and sum((x-mean)^2), the latter 0
// for constant input and NaN if x contains NaN.
func centredEnergy(x []float64) (mean, energy float64) {
	n := float64(len(x))
	sum := vecmath.Sum(x)
	if math.IsNaN(sum) {
		return 0, math.NaN()
	}
	mean = sum / n

	var raw float64
	for _, v := range x {
		d := v - mean
		energy += d * d
		raw += v * v
	}
	if raw == 0 || energy <= varianceFloor*raw {
		return mean, 0
	}
	return mean, energy
}

// clean returns continuous with NaN replaced by zero, plus a prefix count of
// NaN samples (nil when there are none).
func clean(continuous []float64) ([]float64, []int) {
	first := -1
	for i, v := range continuous {
		if math.IsNaN(v) {
			first = i
			break
		}
	}
	if first < 0 {
		return continuous, nil
	}

	c := make([]float64, len(continuous))
	nans := make([]int, len(continuous)+1)
	for i, v := range continuous {
		nans[i+1] = nans[i]
		if math.IsNaN(v) {
			nans[i+1]++
			continue
		}
		c[i] = v
	}
	return c, nans
}

// normalize divides the raw sliding dot products in num by the template
// norm and the centred window norm, in place.
func normalize(num, c []float64, nans []int, n int, tnorm float64) {
	fn := float64(n)
	var s1, s2, peak float64
	nonZero := 0 // exact, so all-zero pads never pick up drift
	for k := range num {
		if k%reseedInterval != 0 {
			out, in := c[k-1], c[k+n-1]
			s1 += in - out
			s2 += in*in - out*out
			if out != 0 {
				nonZero--
			}
			if in != 0 {
				nonZero++
			}
			peak = max(peak, s2)
		}
		// Rounding left by a loud stretch scales with peak, so a quiet
		// window after it needs fresh sums.
		if k%reseedInterval == 0 || s2 < peak*reseedDrop {
			w := c[k : k+n]
			s1 = vecmath.Sum(w)
			s2 = vecmath.DotProduct(w, w)
			nonZero = countNonZero(w)
			peak = s2
		}

		if nonZero == 0 || (nans != nil && nans[k+n]-nans[k] > 0) {
			num[k] = 0
			continue
		}

		energy := s2 - s1*s1/fn
		if s2 <= 0 || energy <= varianceFloor*s2 {
			num[k] = 0
			continue
		}

		num[k] = clamp(num[k] / (tnorm * mathSqrt(energy)))
	}
}

func countNonZero(w []float64) int {
	n := 0
	for _, v := range w {
		if v != 0 {
			n++
		}
	}
	return n
}

func clamp(r float64) float64 {
	switch {
	case math.IsNaN(r):
		return 0
	case r > 1:
		return 1
	case r < -1:
		return -1
	}
	return r
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
