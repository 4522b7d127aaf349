// Package preprocess turns raw, possibly gappy channel segments into
// uniform buffers ready for correlation: every prepared segment of an epoch
// has the same sample rate, start time and sample count, is detrended and
// filtered, and carries zeros (or NaN) wherever no genuine data existed.
//
// The pipeline for one channel is:
//
//  1. gap handling: detrend each contiguous piece, zero-fill gaps, remember
//     the gap intervals
//  2. quality gate: at least half the samples must be non-zero
//  3. simple detrend
//  4. length enforcement against the epoch window (80% coverage rule,
//     nearest-sample alignment, zero pads)
//  5. resampling to the target rate
//  6. simple detrend again
//  7. zero-phase Butterworth filtering
//  8. re-zeroing of pads, and of gaps (or NaN when gaps are not filled)
package preprocess
