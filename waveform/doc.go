// Package waveform defines the data model shared by the preprocessing,
// correlation and detection packages.
//
// All types are treated as immutable values within one detection run.
// Transformations (filtering, padding, resampling) never edit a [Segment] in
// place; they return a new Segment with a freshly allocated sample slice, so
// buffers can be shared between concurrent correlation tasks without locks.
//
// Channel absence is explicit: a [Slot] is either [Present] (carries a
// Segment) or [Missing] (carries only identity and shape). Correlation and
// channel-count bookkeeping branch on that tag instead of scanning samples for
// a magic value. The NaN sentinel is still honoured inside sample data to mark
// masked gap samples (see [IsNoData]).
//
// A [Template] is a named multichannel waveform pattern whose channels share
// sampling rate and sample count; an [Epoch] is one fixed-length window of
// continuous data with one slot per channel identity.
package waveform
