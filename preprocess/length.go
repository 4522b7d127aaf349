package preprocess

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/algo-mfdetect/waveform"
)

// padding records the zero pads added during length enforcement, in
// samples at the current rate.
type padding struct {
	pre, post int
}

func (p padding) scaled(factor float64) padding {
	return padding{
		pre:  int(float64(p.pre) * factor),
		post: int(float64(p.post) * factor),
	}
}

// zero re-applies the pads, discarding filter ringing into them.
func (p padding) zero(data []float64) {
	clear(data[:min(p.pre, len(data))])
	clear(data[max(0, len(data)-p.post):])
}

// enforceLength trims or zero-pads data, sampled at seg's rate, to exactly
// cover [EpochStart, EpochStart+EpochLength). The epoch start is aligned to
// the nearest source sample.
func enforceLength(data []float64, seg waveform.Segment, opts Options, log *slog.Logger) ([]float64, padding, error) {
	want := samplesFor(opts.EpochLength, seg.SampleRate)
	first := int(math.Round(seg.Offset(opts.EpochStart)))

	lo := max(0, first)
	hi := min(len(data), first+want)
	if hi <= lo {
		return nil, padding{}, fmt.Errorf("%w: no samples inside the window", ErrInsufficientCoverage)
	}

	if hi-lo == want {
		return data[lo:hi], padding{}, nil
	}

	covered := float64(hi-lo-1) / seg.SampleRate
	if covered < coverageFraction*opts.EpochLength.Seconds() && !opts.IgnoreLength {
		return nil, padding{}, fmt.Errorf("%w: %.2f s of %.2f s",
			ErrInsufficientCoverage, covered, opts.EpochLength.Seconds())
	}

	pads := padding{pre: lo - first, post: want - (lo - first) - (hi - lo)}
	log.Info("zero padding to the epoch window",
		slog.Int("pre", pads.pre), slog.Int("post", pads.post))

	out := make([]float64, want)
	copy(out[pads.pre:], data[lo:hi])
	return out, pads, nil
}

// fitLength resolves the rounding mismatch left by resampling: surplus
// samples are dropped from the end, a shortfall is zero-padded there and
// added to the post pad.
func fitLength(data []float64, want int, pads padding) ([]float64, padding) {
	switch {
	case len(data) > want:
		return data[:want], pads
	case len(data) < want:
		out := make([]float64, want)
		copy(out, data)
		pads.post += want - len(data)
		return out, pads
	}
	return data, pads
}
