// Package detect runs matched-filter detection end to end and assembles
// the resulting detection records.
//
// A Detector prepares the raw continuous segments, lines them up with the
// template channels, runs the correlation sweep, thresholds each summed
// trace and picks peaks. Every peak becomes one immutable Detection built
// by an Emitter; identifiers come from a run-scoped IDGenerator so
// concurrent runs never share a counter.
package detect
