package waveform

import "errors"

// Errors returned by the data-model constructors.
var (
	ErrInvalidSampleRate  = errors.New("waveform: invalid sample rate")
	ErrInvalidChannelID   = errors.New("waveform: invalid channel id")
	ErrSampleRateMismatch = errors.New("waveform: sample rate mismatch")
	ErrLengthMismatch     = errors.New("waveform: sample count mismatch")
	ErrStartMismatch      = errors.New("waveform: start time mismatch")
	ErrEmptyTemplate      = errors.New("waveform: template has no channels")
	ErrDuplicateChannel   = errors.New("waveform: duplicate channel")
)
