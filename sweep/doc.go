// Package sweep drives the template x channel correlation sweep over one
// epoch and reduces the per-channel correlation traces into one summed
// trace per template.
//
// Work is fanned out to a bounded worker pool one continuous channel at a
// time: every (template, template channel) pair matching that channel is an
// independent task, and the results are folded into the running sums in a
// fixed task order after the channel's tasks finish. Sums are therefore
// identical for any worker count, and at most one channel's traces are held
// in memory at once.
//
// A template channel contributes to the channel count only when its
// correlation trace is not identically zero. Channels missing from the
// epoch contribute nothing.
package sweep
