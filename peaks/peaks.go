// Package peaks extracts threshold-exceeding local maxima from a trace
// with a minimum separation between accepted peaks.
package peaks

import (
	"errors"
	"math"
)

// ErrThresholdLength indicates a per-sample threshold of the wrong length.
var ErrThresholdLength = errors.New("peaks: threshold length differs from trace length")

// Peak is one accepted local maximum.
type Peak struct {
	Value float64
	Index int
}

// Find returns the samples of x that strictly exceed threshold and are the
// maximum of the window [i-minSep+1, i+minSep-1], in index order. Of equal
// maxima closer than minSep samples only the first is kept, so no two
// returned indices are closer than minSep. minSep below one is treated as
// one. NaN samples never qualify.
func Find(x []float64, threshold float64, minSep int) []Peak {
	return find(x, func(int) float64 { return threshold }, minSep)
}

// FindVarying is Find with a per-sample threshold.
func FindVarying(x, thresholds []float64, minSep int) ([]Peak, error) {
	if len(thresholds) != len(x) {
		return nil, ErrThresholdLength
	}
	return find(x, func(i int) float64 { return thresholds[i] }, minSep), nil
}

func find(x []float64, threshold func(int) float64, minSep int) []Peak {
	minSep = max(1, minSep)
	localMax := slidingMax(x, minSep-1)

	var out []Peak
	last := math.MinInt
	for i, v := range x {
		if math.IsNaN(v) || v <= threshold(i) || v < localMax[i] {
			continue
		}
		if len(out) > 0 && i-last < minSep {
			continue
		}
		out = append(out, Peak{Value: v, Index: i})
		last = i
	}
	return out
}

// slidingMax returns m[i] = max(x[i-w .. i+w]) clipped to the slice, using
// a monotonic deque of indices. NaN counts as -Inf.
func slidingMax(x []float64, w int) []float64 {
	val := func(i int) float64 {
		if math.IsNaN(x[i]) {
			return math.Inf(-1)
		}
		return x[i]
	}

	out := make([]float64, len(x))
	deque := make([]int, 0, 2*w+1)
	next := 0 // next index to push
	for i := range x {
		for ; next < len(x) && next <= i+w; next++ {
			for len(deque) > 0 && val(deque[len(deque)-1]) <= val(next) {
				deque = deque[:len(deque)-1]
			}
			deque = append(deque, next)
		}
		for deque[0] < i-w {
			deque = deque[1:]
		}
		out[i] = val(deque[0])
	}
	return out
}
