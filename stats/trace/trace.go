// Package trace computes summary statistics over correlation and waveform
// traces. NaN samples are skipped by every function so masked gap samples do
// not poison a statistic.
package trace

import (
	"math"
	"slices"
)

// Mean returns the arithmetic mean of the finite samples, or 0 when there
// are none.
func Mean(x []float64) float64 {
	var sum float64
	n := 0
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// MeanAbs returns the mean absolute value.
func MeanAbs(x []float64) float64 {
	var sum float64
	n := 0
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		sum += math.Abs(v)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Median returns the median; for even counts it is the mean of the two
// middle values. The input is not reordered.
func Median(x []float64) float64 {
	buf := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			buf = append(buf, v)
		}
	}
	return medianInPlace(buf)
}

// MedianAbs returns the median of |x|.
func MedianAbs(x []float64) float64 {
	buf := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			buf = append(buf, math.Abs(v))
		}
	}
	return medianInPlace(buf)
}

// NonZero counts samples that are neither zero nor NaN.
func NonZero(x []float64) int {
	n := 0
	for _, v := range x {
		if v != 0 && !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// AllZero reports whether every sample is exactly zero.
func AllZero(x []float64) bool {
	for _, v := range x {
		if v != 0 {
			return false
		}
	}
	return true
}

// Max returns the largest finite sample and its first index, or (-1, NaN)
// when there is none.
func Max(x []float64) (int, float64) {
	idx := -1
	best := math.NaN()
	for i, v := range x {
		if math.IsNaN(v) {
			continue
		}
		if idx < 0 || v > best {
			idx, best = i, v
		}
	}
	return idx, best
}

// Moments returns the mean and population variance using Welford's online
// algorithm.
func Moments(x []float64) (mean, variance float64) {
	var m2 float64
	n := 0
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		n++
		delta := v - mean
		mean += delta / float64(n)
		m2 += delta * (v - mean)
	}
	if n == 0 {
		return 0, 0
	}
	return mean, m2 / float64(n)
}

func medianInPlace(buf []float64) float64 {
	n := len(buf)
	if n == 0 {
		return 0
	}
	k := n / 2
	hi := selectKth(buf, k)
	if n%2 == 1 {
		return hi
	}
	// After selection every element left of k is <= buf[k].
	lo := slices.Max(buf[:k])
	return (lo + hi) / 2
}

// selectKth partially orders buf so that buf[k] holds the k-th smallest
// element (Hoare quickselect with median-of-three pivots) and returns it.
func selectKth(buf []float64, k int) float64 {
	lo, hi := 0, len(buf)-1
	for lo < hi {
		mid := lo + (hi-lo)/2
		if buf[mid] < buf[lo] {
			buf[mid], buf[lo] = buf[lo], buf[mid]
		}
		if buf[hi] < buf[lo] {
			buf[hi], buf[lo] = buf[lo], buf[hi]
		}
		if buf[hi] < buf[mid] {
			buf[hi], buf[mid] = buf[mid], buf[hi]
		}
		pivot := buf[mid]

		i, j := lo, hi
		for i <= j {
			for buf[i] < pivot {
				i++
			}
			for buf[j] > pivot {
				j--
			}
			if i <= j {
				buf[i], buf[j] = buf[j], buf[i]
				i++
				j--
			}
		}
		switch {
		case k <= j:
			hi = j
		case k >= i:
			lo = i
		default:
			return buf[k]
		}
	}
	return buf[k]
}
