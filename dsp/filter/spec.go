package filter

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSpec is returned for cut frequencies or orders that cannot be
// realised at the requested sample rate.
var ErrInvalidSpec = errors.New("filter: invalid filter spec")

// Kind is the filter shape selected by a Spec.
type Kind int

const (
	// KindNone applies no filter.
	KindNone Kind = iota
	// KindLowpass keeps content below HighCut.
	KindLowpass
	// KindHighpass keeps content above LowCut.
	KindHighpass
	// KindBandpass keeps content between LowCut and HighCut.
	KindBandpass
)

func (k Kind) String() string {
	switch k {
	case KindLowpass:
		return "lowpass"
	case KindHighpass:
		return "highpass"
	case KindBandpass:
		return "bandpass"
	default:
		return "none"
	}
}

// Spec parameterises the filter primitive. A zero cut frequency means
// "not set".
type Spec struct {
	LowCut    float64 // Hz
	HighCut   float64 // Hz
	Order     int     // corners per edge
	ZeroPhase bool
}

// Kind returns the shape implied by which cut frequencies are set.
func (s Spec) Kind() Kind {
	switch {
	case s.LowCut > 0 && s.HighCut > 0:
		return KindBandpass
	case s.HighCut > 0:
		return KindLowpass
	case s.LowCut > 0:
		return KindHighpass
	default:
		return KindNone
	}
}

// Validate checks s against sampleRate. HighCut at or above Nyquist is
// rejected, as is LowCut at or above HighCut.
func (s Spec) Validate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: sample rate %v", ErrInvalidSpec, sampleRate)
	}
	if s.LowCut < 0 || s.HighCut < 0 || math.IsNaN(s.LowCut) || math.IsNaN(s.HighCut) {
		return fmt.Errorf("%w: negative or NaN cut frequency", ErrInvalidSpec)
	}

	nyquist := sampleRate / 2
	if s.HighCut >= nyquist {
		return fmt.Errorf("%w: highcut %v Hz must be lower than the Nyquist frequency %v Hz",
			ErrInvalidSpec, s.HighCut, nyquist)
	}
	if s.LowCut >= nyquist {
		return fmt.Errorf("%w: lowcut %v Hz must be lower than the Nyquist frequency %v Hz",
			ErrInvalidSpec, s.LowCut, nyquist)
	}
	if s.Kind() == KindBandpass && s.LowCut >= s.HighCut {
		return fmt.Errorf("%w: lowcut %v Hz must be below highcut %v Hz", ErrInvalidSpec, s.LowCut, s.HighCut)
	}
	if s.Kind() != KindNone && s.Order < 1 {
		return fmt.Errorf("%w: order %d", ErrInvalidSpec, s.Order)
	}
	return nil
}

// Design returns the cascade for s at sampleRate. For KindNone it returns an
// empty chain.
func Design(s Spec, sampleRate float64) (*Chain, error) {
	if err := s.Validate(sampleRate); err != nil {
		return nil, err
	}

	var coeffs []Coefficients
	switch s.Kind() {
	case KindBandpass:
		coeffs = append(ButterworthHP(s.LowCut, s.Order, sampleRate),
			ButterworthLP(s.HighCut, s.Order, sampleRate)...)
	case KindLowpass:
		coeffs = ButterworthLP(s.HighCut, s.Order, sampleRate)
	case KindHighpass:
		coeffs = ButterworthHP(s.LowCut, s.Order, sampleRate)
	}
	return NewChain(coeffs), nil
}

// Apply returns a filtered copy of data. data is not modified.
func Apply(data []float64, s Spec, sampleRate float64) ([]float64, error) {
	chain, err := Design(s, sampleRate)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(data))
	copy(out, data)
	if s.ZeroPhase {
		chain.ZeroPhase(out)
	} else {
		chain.ProcessBlock(out)
	}
	return out, nil
}
