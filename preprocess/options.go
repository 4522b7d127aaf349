package preprocess

import (
	"log/slog"
	"time"

	"github.com/cwbudde/algo-mfdetect/dsp/filter"
)

// Options configures Prepare.
type Options struct {
	// Filter is applied after resampling. ZeroPhase is forced on.
	Filter filter.Spec

	// TargetRate is the output sample rate; 0 keeps the source rate.
	TargetRate float64

	// EpochStart and EpochLength define the window every output must span
	// exactly. EpochLength 0 disables length enforcement; EpochStart, if
	// set, then only trims leading samples.
	EpochStart  time.Time
	EpochLength time.Duration

	// FillGaps leaves gaps zero-filled after filtering. When false, gap
	// samples are set to the NaN no-data sentinel.
	FillGaps bool

	// IgnoreLength pads windows with less than 80% coverage instead of
	// failing.
	IgnoreLength bool

	// SeisanChannelNames renames the output channel to the two-letter form
	// used by SEISAN s-files: the first and last letters of the code.
	SeisanChannelNames bool

	Logger *slog.Logger
}

// DefaultOptions returns day-long processing options with gap filling on
// and no filter.
func DefaultOptions() Options {
	return Options{
		EpochLength: 24 * time.Hour,
		FillGaps:    true,
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// coverageFraction is the minimum share of the window real data must span.
const coverageFraction = 0.8
