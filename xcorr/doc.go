// Package xcorr computes sliding normalized cross-correlation (NCC) of a
// short template against a longer continuous trace.
//
// Output sample k is the Pearson correlation between the template and the
// window continuous[k:k+len(template)], so the result has
// len(continuous)-len(template)+1 samples in [-1, 1].
//
// Degenerate lags yield the neutral value 0 instead of an undefined or
// saturated coefficient: a window with zero variance, a window containing a
// NaN (no-data) sample, or a template that is constant or contains NaN.
//
// Two strategies are provided:
//
//   - Direct: O(N*M) dot products, best for very short templates
//   - FFT: block overlap-save, packing two real blocks into each complex
//     transform
//
// Correlate picks between them by template length.
package xcorr
