package preprocess

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-mfdetect/dsp/filter"
	"github.com/cwbudde/algo-mfdetect/waveform"
)

var (
	// ErrInvalidFilterSpec is returned before any work when the filter
	// cannot be realised at the target rate. It is filter.ErrInvalidSpec.
	ErrInvalidFilterSpec = filter.ErrInvalidSpec
	// ErrInsufficientData indicates a mostly blank recording.
	ErrInsufficientData = errors.New("preprocess: more zeros than data")
	// ErrInsufficientCoverage indicates real data covering less than 80% of
	// the epoch window.
	ErrInsufficientCoverage = errors.New("preprocess: insufficient coverage of the epoch window")
	// ErrMixedDays indicates segments starting on different UTC days.
	ErrMixedDays = errors.New("preprocess: segments start on different days")
	// ErrNoSegments indicates an empty segment list.
	ErrNoSegments = errors.New("preprocess: no segments")
)

// ChannelError is a per-channel preprocessing failure. The channel is
// excluded from the epoch; the run continues.
type ChannelError struct {
	ID  waveform.ChannelID
	Err error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("preprocess: channel %s: %v", e.ID, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}
