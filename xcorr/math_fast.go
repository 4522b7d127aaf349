//go:build fastmath

package xcorr

func init() {
	mathSqrt = sqrtFast
}
