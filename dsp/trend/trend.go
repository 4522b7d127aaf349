// Package trend removes offsets and linear trends from sample blocks.
//
// All functions return a new slice; the input is left untouched.
package trend

// Simple subtracts the straight line through the first and last sample.
// A one-sample input becomes zero.
func Simple(x []float64) []float64 {
	out := make([]float64, len(x))
	n := len(x)
	if n < 2 {
		return out
	}

	first, last := x[0], x[n-1]
	slope := (last - first) / float64(n-1)
	for i, v := range x {
		out[i] = v - (first + slope*float64(i))
	}
	return out
}

// Linear subtracts the least-squares line.
func Linear(x []float64) []float64 {
	out := make([]float64, len(x))
	n := len(x)
	if n < 2 {
		return out
	}

	// Centred abscissa keeps the normal equations well conditioned on
	// day-long inputs.
	c := float64(n-1) / 2
	var sy, sty, stt float64
	for i, v := range x {
		t := float64(i) - c
		sy += v
		sty += t * v
		stt += t * t
	}
	mean := sy / float64(n)
	slope := sty / stt
	for i, v := range x {
		out[i] = v - mean - slope*(float64(i)-c)
	}
	return out
}

// Demean subtracts the arithmetic mean.
func Demean(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	mean := sum / float64(len(x))
	for i, v := range x {
		out[i] = v - mean
	}
	return out
}
