package waveform

import (
	"fmt"
	"math"
	"time"
)

// IsNoData reports whether v is the no-data sentinel (NaN).
func IsNoData(v float64) bool {
	return math.IsNaN(v)
}

// NoData returns the no-data sentinel value.
func NoData() float64 {
	return math.NaN()
}

// Gap is a half-open interval [Start, End) with no genuine samples.
type Gap struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start.
func (g Gap) Duration() time.Duration {
	return g.End.Sub(g.Start)
}

// Segment is one channel's waveform for one time span.
//
// Data must not be modified once the segment has been handed to another
// component; use [Segment.WithData] to derive a new segment.
type Segment struct {
	ID         ChannelID
	Start      time.Time
	SampleRate float64
	Data       []float64

	// Gaps lists the intervals known to be missing. Within a gap the samples
	// are either NaN (masked) or zero (filled); never anything else once a
	// segment has been prepared.
	Gaps []Gap
}

// Len returns the number of samples.
func (s Segment) Len() int {
	return len(s.Data)
}

// Delta returns the sample interval.
func (s Segment) Delta() time.Duration {
	return Seconds(1 / s.SampleRate)
}

// Duration returns the covered span, Len / SampleRate.
func (s Segment) Duration() time.Duration {
	return Seconds(float64(len(s.Data)) / s.SampleRate)
}

// End returns the exclusive end time, Start + Duration.
func (s Segment) End() time.Time {
	return s.Start.Add(s.Duration())
}

// TimeAt returns the time stamp of sample i.
func (s Segment) TimeAt(i int) time.Time {
	return s.Start.Add(Seconds(float64(i) / s.SampleRate))
}

// Offset returns the fractional sample position of t relative to Start.
func (s Segment) Offset(t time.Time) float64 {
	return t.Sub(s.Start).Seconds() * s.SampleRate
}

// Gappy reports whether the segment declares gaps or carries NaN samples.
func (s Segment) Gappy() bool {
	if len(s.Gaps) > 0 {
		return true
	}
	for _, v := range s.Data {
		if IsNoData(v) {
			return true
		}
	}
	return false
}

// Validate checks the header fields.
func (s Segment) Validate() error {
	if s.SampleRate <= 0 || math.IsNaN(s.SampleRate) || math.IsInf(s.SampleRate, 0) {
		return fmt.Errorf("%w: %s at %v Hz", ErrInvalidSampleRate, s.ID, s.SampleRate)
	}
	return nil
}

// WithData returns a copy of s that carries data instead of s.Data.
// Gaps are copied.
func (s Segment) WithData(data []float64) Segment {
	out := s
	out.Data = data
	if len(s.Gaps) > 0 {
		out.Gaps = append([]Gap(nil), s.Gaps...)
	}
	return out
}

// Clone returns a deep copy.
func (s Segment) Clone() Segment {
	return s.WithData(append([]float64(nil), s.Data...))
}

// Seconds converts floating-point seconds to a Duration, rounding to the
// nearest nanosecond.
func Seconds(sec float64) time.Duration {
	return time.Duration(math.Round(sec * float64(time.Second)))
}
