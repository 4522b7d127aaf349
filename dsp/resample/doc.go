// Package resample converts whole traces between sample rates using a
// polyphase windowed-sinc FIR.
//
// Unlike a streaming converter, the one-shot Process compensates the
// filter's group delay so output sample m lands exactly at input time
// m*down/up. That alignment matters when traces resampled separately are
// later compared sample by sample.
//
// Quality modes:
//
//	mode            taps/phase   nominal stopband
//	QualityFast     16           ~55 dB
//	QualityBalanced 32           ~75 dB
//	QualityBest     64           ~90 dB
package resample
