package waveform

// Slot is one channel position in an epoch or template: either present data
// or an explicit absence of data with a known shape.
type Slot struct {
	id         ChannelID
	seg        Segment
	present    bool
	sampleRate float64
	length     int
}

// Present wraps seg in a slot that carries data.
func Present(seg Segment) Slot {
	return Slot{
		id:         seg.ID,
		seg:        seg,
		present:    true,
		sampleRate: seg.SampleRate,
		length:     seg.Len(),
	}
}

// Missing returns a slot for channel id that has no data but occupies
// length samples at sampleRate.
func Missing(id ChannelID, sampleRate float64, length int) Slot {
	return Slot{id: id, sampleRate: sampleRate, length: length}
}

// ID returns the channel identity.
func (s Slot) ID() ChannelID { return s.id }

// IsPresent reports whether the slot carries data.
func (s Slot) IsPresent() bool { return s.present }

// Segment returns the data segment and true for a present slot.
func (s Slot) Segment() (Segment, bool) {
	return s.seg, s.present
}

// Data returns the sample slice of a present slot, nil otherwise.
func (s Slot) Data() []float64 {
	if !s.present {
		return nil
	}
	return s.seg.Data
}

// Len returns the slot length in samples.
func (s Slot) Len() int { return s.length }

// SampleRate returns the slot sample rate.
func (s Slot) SampleRate() float64 { return s.sampleRate }
