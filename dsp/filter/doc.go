// Package filter provides the Butterworth band/low/high-pass primitive used by
// the preprocessor.
//
// Filters are cascades of second-order sections ([Section]) in Direct Form II
// Transposed. Odd orders add a first-order section (B2=A2=0). A [Spec]
// selects the shape from which cut frequencies are set:
//
//   - both LowCut and HighCut: bandpass (highpass cascade at LowCut followed
//     by lowpass cascade at HighCut)
//   - only HighCut: lowpass
//   - only LowCut: highpass
//   - neither: no filter ([KindNone])
//
// With ZeroPhase set the cascade runs forward and then backward over the
// data, doubling the effective order and cancelling the phase response.
package filter
