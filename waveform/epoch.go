package waveform

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Epoch is one fixed-length window of continuous data. Every slot has the
// same sample rate and sample count; channels without data are held as
// Missing slots so template and continuous channel positions stay aligned.
type Epoch struct {
	start      time.Time
	sampleRate float64
	length     int
	slots      []Slot
}

// NewEpoch validates slots and returns them as an epoch sorted by channel id.
func NewEpoch(start time.Time, sampleRate float64, length int, slots ...Slot) (Epoch, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return Epoch{}, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	sorted := slices.Clone(slots)
	slices.SortStableFunc(sorted, func(a, b Slot) int { return a.ID().Compare(b.ID()) })

	for i, s := range sorted {
		if i > 0 && sorted[i-1].ID() == s.ID() {
			return Epoch{}, fmt.Errorf("%w: %s", ErrDuplicateChannel, s.ID())
		}
		if s.SampleRate() != sampleRate {
			return Epoch{}, fmt.Errorf("%w: %s has %v Hz, epoch is %v Hz",
				ErrSampleRateMismatch, s.ID(), s.SampleRate(), sampleRate)
		}
		if s.Len() != length {
			return Epoch{}, fmt.Errorf("%w: %s has %d samples, epoch has %d",
				ErrLengthMismatch, s.ID(), s.Len(), length)
		}
		if seg, ok := s.Segment(); ok {
			if d := math.Abs(seg.Start.Sub(start).Seconds()) * sampleRate; d >= 0.5 {
				return Epoch{}, fmt.Errorf("%w: %s starts at %v, epoch at %v",
					ErrStartMismatch, s.ID(), seg.Start, start)
			}
		}
	}

	return Epoch{start: start, sampleRate: sampleRate, length: length, slots: sorted}, nil
}

// EpochFromSegments builds an epoch from prepared segments. The first
// segment defines start, rate and length.
func EpochFromSegments(segs ...Segment) (Epoch, error) {
	if len(segs) == 0 {
		return Epoch{}, fmt.Errorf("%w: no segments", ErrLengthMismatch)
	}
	slots := make([]Slot, len(segs))
	for i, s := range segs {
		slots[i] = Present(s)
	}
	return NewEpoch(segs[0].Start, segs[0].SampleRate, segs[0].Len(), slots...)
}

// Start returns the epoch start time.
func (e Epoch) Start() time.Time { return e.start }

// SampleRate returns the shared sample rate.
func (e Epoch) SampleRate() float64 { return e.sampleRate }

// Len returns the per-channel sample count.
func (e Epoch) Len() int { return e.length }

// Duration returns Len / SampleRate.
func (e Epoch) Duration() time.Duration {
	return Seconds(float64(e.length) / e.sampleRate)
}

// NumChannels returns the number of slots, present or missing.
func (e Epoch) NumChannels() int { return len(e.slots) }

// Slots returns a copy of the slots in channel-id order.
func (e Epoch) Slots() []Slot { return slices.Clone(e.slots) }

// Slot returns the slot for id.
func (e Epoch) Slot(id ChannelID) (Slot, bool) {
	i, ok := slices.BinarySearchFunc(e.slots, id, func(s Slot, id ChannelID) int {
		return s.ID().Compare(id)
	})
	if !ok {
		return Slot{}, false
	}
	return e.slots[i], true
}

// IDs returns the channel ids of all slots.
func (e Epoch) IDs() []ChannelID {
	ids := make([]ChannelID, len(e.slots))
	for i, s := range e.slots {
		ids[i] = s.ID()
	}
	return ids
}

// WithMissing returns an epoch in which every id not already present gets
// a Missing slot of the epoch's shape.
func (e Epoch) WithMissing(ids ...ChannelID) Epoch {
	out := e
	out.slots = slices.Clone(e.slots)
	for _, id := range ids {
		if _, ok := out.Slot(id); ok {
			continue
		}
		i, _ := slices.BinarySearchFunc(out.slots, id, func(s Slot, id ChannelID) int {
			return s.ID().Compare(id)
		})
		out.slots = slices.Insert(out.slots, i, Missing(id, e.sampleRate, e.length))
	}
	return out
}

// Restrict returns an epoch holding only the slots for which keep returns
// true.
func (e Epoch) Restrict(keep func(ChannelID) bool) Epoch {
	out := e
	out.slots = nil
	for _, s := range e.slots {
		if keep(s.ID()) {
			out.slots = append(out.slots, s)
		}
	}
	return out
}
