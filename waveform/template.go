package waveform

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// TemplateChannel is one channel of a template together with its delay
// relative to the earliest channel in the template.
type TemplateChannel struct {
	Segment

	// Offset is Start minus the earliest Start in the template. It is zero
	// for the earliest channel and never negative.
	Offset time.Duration
}

// DelaySamples returns Offset in samples, rounded to the nearest sample.
func (c TemplateChannel) DelaySamples() int {
	return int(math.Round(c.Offset.Seconds() * c.SampleRate))
}

// Template is a named multichannel waveform pattern. All channels share
// sample rate and sample count. A template may hold several channels with the
// same identity (for example separate P and S windows on one sensor).
type Template struct {
	name       string
	sampleRate float64
	length     int
	channels   []TemplateChannel
}

// NewTemplate builds a template from segments. Each segment's Start is its
// pick-aligned start time and defines the channel delay.
//
// It fails with ErrEmptyTemplate for zero segments, ErrSampleRateMismatch
// when rates differ and ErrLengthMismatch when sample counts differ.
func NewTemplate(name string, segs ...Segment) (Template, error) {
	if len(segs) == 0 {
		return Template{}, fmt.Errorf("%w: %s", ErrEmptyTemplate, name)
	}

	rate := segs[0].SampleRate
	length := segs[0].Len()
	earliest := segs[0].Start

	for _, s := range segs {
		if err := s.Validate(); err != nil {
			return Template{}, fmt.Errorf("waveform: template %s: %w", name, err)
		}
		if s.SampleRate != rate {
			return Template{}, fmt.Errorf("%w: template %s channel %s has %v Hz, want %v Hz",
				ErrSampleRateMismatch, name, s.ID, s.SampleRate, rate)
		}
		if s.Len() != length {
			return Template{}, fmt.Errorf("%w: template %s channel %s has %d samples, want %d",
				ErrLengthMismatch, name, s.ID, s.Len(), length)
		}
		if s.Start.Before(earliest) {
			earliest = s.Start
		}
	}

	channels := make([]TemplateChannel, len(segs))
	for i, s := range segs {
		channels[i] = TemplateChannel{Segment: s, Offset: s.Start.Sub(earliest)}
	}
	slices.SortStableFunc(channels, func(a, b TemplateChannel) int {
		if r := a.ID.Compare(b.ID); r != 0 {
			return r
		}
		return a.Start.Compare(b.Start)
	})

	return Template{name: name, sampleRate: rate, length: length, channels: channels}, nil
}

// Name returns the template name.
func (t Template) Name() string { return t.name }

// SampleRate returns the shared channel sample rate.
func (t Template) SampleRate() float64 { return t.sampleRate }

// Len returns the shared channel length in samples.
func (t Template) Len() int { return t.length }

// NumChannels returns the number of channels.
func (t Template) NumChannels() int { return len(t.channels) }

// Channel returns channel i in (id, start) order.
func (t Template) Channel(i int) TemplateChannel { return t.channels[i] }

// Channels returns a copy of the channel list.
func (t Template) Channels() []TemplateChannel {
	return slices.Clone(t.channels)
}

// Select returns the indices of all channels with identity id.
func (t Template) Select(id ChannelID) []int {
	var idx []int
	for i, c := range t.channels {
		if c.ID == id {
			idx = append(idx, i)
		}
	}
	return idx
}

// IDs returns the distinct channel identities, sorted.
func (t Template) IDs() []ChannelID {
	ids := make([]ChannelID, 0, len(t.channels))
	for _, c := range t.channels {
		if len(ids) == 0 || ids[len(ids)-1] != c.ID {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Restrict returns a template holding only the channels for which keep
// returns true. Offsets keep their original reference so the relative
// moveout between surviving channels is unchanged. The boolean is false when
// no channel survives.
func (t Template) Restrict(keep func(ChannelID) bool) (Template, bool) {
	out := Template{name: t.name, sampleRate: t.sampleRate, length: t.length}
	for _, c := range t.channels {
		if keep(c.ID) {
			out.channels = append(out.channels, c)
		}
	}
	return out, len(out.channels) > 0
}
