// Package threshold turns a threshold policy and a summed correlation trace
// into the concrete detection threshold for one template and epoch.
package threshold

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-mfdetect/stats/trace"
)

// ErrUnknownPolicy is reported on Threshold.FallbackErr when the requested
// policy is not recognised.
var ErrUnknownPolicy = errors.New("threshold: unknown policy")

// MeanTolerance is the largest summed-correlation mean considered
// zero-centred.
const MeanTolerance = 0.05

// Policy names a threshold rule.
type Policy string

const (
	// MAD scales the median absolute value: k * median(|sum|).
	MAD Policy = "MAD"
	// Absolute uses k directly.
	Absolute Policy = "absolute"
	// ChannelAverage compares each lag against k * sum[i] / channels.
	ChannelAverage Policy = "av_chan_corr"
	// MeanAbs scales the mean absolute value: k * mean(|sum|). It is the
	// fallback for unknown policies.
	MeanAbs Policy = "mean_abs"
)

// ParsePolicy maps a configuration string to a Policy, ignoring case.
func ParsePolicy(s string) (Policy, error) {
	for _, p := range []Policy{MAD, Absolute, ChannelAverage, MeanAbs} {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Threshold is the threshold in effect for one summed trace.
type Threshold struct {
	// Policy is the policy actually applied, MeanAbs after a fallback.
	Policy Policy

	// Value is the scalar threshold; for ChannelAverage it is the largest
	// per-lag value.
	Value float64
	// Values holds per-lag thresholds for ChannelAverage, nil otherwise.
	Values []float64

	// Mean is the mean of the summed trace. MeanNotZero is set when it
	// deviates from zero by more than MeanTolerance, which points at a
	// preprocessing or alignment problem.
	Mean        float64
	MeanNotZero bool

	// FallbackErr wraps ErrUnknownPolicy when the requested policy was
	// replaced by MeanAbs.
	FallbackErr error
}

// At returns the threshold at lag i.
func (t Threshold) At(i int) float64 {
	if t.Values != nil {
		return t.Values[i]
	}
	return t.Value
}

// PerSample reports whether the threshold varies by lag.
func (t Threshold) PerSample() bool {
	return t.Values != nil
}

type config struct {
	logger *slog.Logger
}

// Option configures Compute.
type Option func(*config)

// WithLogger sets the logger used for the fallback and mean warnings.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// Compute evaluates policy with multiplier k over sum. channels is the
// template's final channel count, used once for the whole trace by
// ChannelAverage; with no channels that policy yields +Inf.
//
// An unknown policy never leaves the trace unthresholded: MeanAbs is used
// and the substitution is reported on FallbackErr and logged.
func Compute(sum []float64, policy Policy, k float64, channels int, opts ...Option) Threshold {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	th := Threshold{Policy: policy, Mean: trace.Mean(sum)}
	if math.Abs(th.Mean) > MeanTolerance {
		th.MeanNotZero = true
		cfg.logger.Warn("mean of summed correlation is not zero, check preprocessing",
			slog.Float64("mean", th.Mean))
	}

	switch policy {
	case MAD:
		th.Value = k * trace.MedianAbs(sum)
	case Absolute:
		th.Value = k
	case ChannelAverage:
		if channels < 1 {
			th.Value = math.Inf(1)
			break
		}
		th.Values = make([]float64, len(sum))
		vecmath.ScaleBlock(th.Values, sum, k/float64(channels))
		th.Value = math.Inf(-1)
		if len(th.Values) > 0 {
			_, th.Value = trace.Max(th.Values)
		}
	case MeanAbs:
		th.Value = k * trace.MeanAbs(sum)
	default:
		th.FallbackErr = fmt.Errorf("%w: %q, using %s", ErrUnknownPolicy, policy, MeanAbs)
		th.Policy = MeanAbs
		th.Value = k * trace.MeanAbs(sum)
		cfg.logger.Warn("unknown threshold policy, falling back",
			slog.String("policy", string(policy)), slog.String("fallback", string(MeanAbs)))
	}

	cfg.logger.Debug("threshold", slog.String("policy", string(th.Policy)), slog.Float64("value", th.Value))
	return th
}
