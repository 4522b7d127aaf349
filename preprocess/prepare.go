package preprocess

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cwbudde/algo-mfdetect/dsp/filter"
	"github.com/cwbudde/algo-mfdetect/dsp/resample"
	"github.com/cwbudde/algo-mfdetect/dsp/trend"
	"github.com/cwbudde/algo-mfdetect/stats/trace"
	"github.com/cwbudde/algo-mfdetect/waveform"
)

// Prepare runs the full preprocessing pipeline on one segment and returns a
// new segment; seg is not modified. Given identical inputs the result is
// identical.
func Prepare(seg waveform.Segment, opts Options) (waveform.Segment, error) {
	rate := opts.TargetRate
	if rate == 0 {
		rate = seg.SampleRate
	}

	spec := opts.Filter
	spec.ZeroPhase = true
	if err := spec.Validate(rate); err != nil {
		return waveform.Segment{}, err
	}
	if err := seg.Validate(); err != nil {
		return waveform.Segment{}, err
	}

	log := opts.logger().With(slog.String("channel", seg.ID.String()))
	log.Debug("preparing", slog.Int("samples", seg.Len()), slog.Float64("rate", seg.SampleRate))

	data, gaps := fillGaps(seg)

	if len(data) == 0 || float64(trace.NonZero(data)) < 0.5*float64(len(data)) {
		return waveform.Segment{}, fmt.Errorf("%w: %d of %d samples non-zero",
			ErrInsufficientData, trace.NonZero(data), len(data))
	}

	data = trend.Simple(data)

	start := seg.Start
	var pads padding
	switch {
	case opts.EpochLength > 0:
		var err error
		data, pads, err = enforceLength(data, seg, opts, log)
		if err != nil {
			return waveform.Segment{}, err
		}
		start = opts.EpochStart
	case !opts.EpochStart.IsZero() && opts.EpochStart.After(seg.Start):
		skip := min(len(data), int(math.Round(seg.Offset(opts.EpochStart))))
		data = data[skip:]
		start = seg.TimeAt(skip)
	}

	if rate != seg.SampleRate {
		log.Debug("resampling", slog.Float64("from", seg.SampleRate), slog.Float64("to", rate))
		var err error
		data, err = resample.ToRate(data, seg.SampleRate, rate)
		if err != nil {
			return waveform.Segment{}, fmt.Errorf("preprocess: %w", err)
		}
		pads = pads.scaled(rate / seg.SampleRate)
	}

	if opts.EpochLength > 0 {
		want := samplesFor(opts.EpochLength, rate)
		if len(data) != want {
			log.Debug("fixing length after resampling", slog.Int("have", len(data)), slog.Int("want", want))
		}
		data, pads = fitLength(data, want, pads)
	}

	data = trend.Simple(data)

	if spec.Kind() == filter.KindNone {
		log.Warn("no filters applied")
	} else {
		log.Debug("filtering", slog.String("kind", spec.Kind().String()))
		var err error
		data, err = filter.Apply(data, spec, rate)
		if err != nil {
			return waveform.Segment{}, err
		}
	}

	out := waveform.Segment{
		ID:         seg.ID,
		Start:      start,
		SampleRate: rate,
		Data:       data,
	}
	if opts.SeisanChannelNames {
		out.ID.Channel = seisanChannel(out.ID.Channel)
	}
	if len(gaps) > 0 {
		out.Gaps = clipGaps(gaps, out.Start, out.End())
		reapplyGaps(out.Data, out.Start, rate, out.Gaps, pads, opts.FillGaps)
	}
	pads.zero(out.Data)

	log.Debug("prepared", slog.Int("samples", len(out.Data)))
	return out, nil
}

// fillGaps returns a copy of the segment data with every gap (declared or
// NaN) zero-filled and each contiguous piece linearly detrended, plus the
// merged list of gap intervals.
func fillGaps(seg waveform.Segment) ([]float64, []waveform.Gap) {
	data := make([]float64, len(seg.Data))
	copy(data, seg.Data)
	if !seg.Gappy() {
		return data, nil
	}

	mask := make([]bool, len(data))
	for i, v := range data {
		mask[i] = waveform.IsNoData(v)
	}
	for _, g := range seg.Gaps {
		lo, hi := gapIndices(g, seg.Start, seg.SampleRate, len(data))
		for i := lo; i < hi; i++ {
			mask[i] = true
		}
	}

	var gaps []waveform.Gap
	forRuns(mask, func(lo, hi int, missing bool) {
		if missing {
			clear(data[lo:hi])
			gaps = append(gaps, waveform.Gap{Start: seg.TimeAt(lo), End: seg.TimeAt(hi)})
			return
		}
		copy(data[lo:hi], trend.Linear(data[lo:hi]))
	})
	return data, gaps
}

// reapplyGaps restores the gap intervals after filtering: zero with each
// surviving piece linearly detrended when fill is set, NaN otherwise.
// Detrending never reaches into the zero pads.
func reapplyGaps(data []float64, start time.Time, rate float64, gaps []waveform.Gap, pads padding, fill bool) {
	mask := make([]bool, len(data))
	for _, g := range gaps {
		lo, hi := gapIndices(g, start, rate, len(data))
		for i := lo; i < hi; i++ {
			mask[i] = true
		}
	}

	forRuns(mask, func(lo, hi int, missing bool) {
		switch {
		case missing && fill:
			clear(data[lo:hi])
		case missing:
			for i := lo; i < hi; i++ {
				data[i] = waveform.NoData()
			}
		case fill:
			lo, hi = max(lo, pads.pre), min(hi, len(data)-pads.post)
			if lo < hi {
				copy(data[lo:hi], trend.Linear(data[lo:hi]))
			}
		}
	})
}

// gapIndices maps g onto the sample indices [lo, hi) whose time stamps fall
// inside it.
func gapIndices(g waveform.Gap, start time.Time, rate float64, n int) (int, int) {
	const eps = 1e-6
	lo := int(math.Ceil(g.Start.Sub(start).Seconds()*rate - eps))
	hi := int(math.Ceil(g.End.Sub(start).Seconds()*rate - eps))
	return max(0, min(lo, n)), max(0, min(hi, n))
}

// forRuns calls fn for each maximal run of equal mask values.
func forRuns(mask []bool, fn func(lo, hi int, value bool)) {
	for lo := 0; lo < len(mask); {
		hi := lo + 1
		for hi < len(mask) && mask[hi] == mask[lo] {
			hi++
		}
		fn(lo, hi, mask[lo])
		lo = hi
	}
}

func clipGaps(gaps []waveform.Gap, start, end time.Time) []waveform.Gap {
	var out []waveform.Gap
	for _, g := range gaps {
		if !g.End.After(start) || !g.Start.Before(end) {
			continue
		}
		if g.Start.Before(start) {
			g.Start = start
		}
		if g.End.After(end) {
			g.End = end
		}
		out = append(out, g)
	}
	return out
}

func samplesFor(d time.Duration, rate float64) int {
	return int(math.Round(d.Seconds() * rate))
}

// seisanChannel collapses a channel code to its first and last letters,
// so HHZ becomes HZ. Codes shorter than three letters are unchanged.
func seisanChannel(code string) string {
	if len(code) < 3 {
		return code
	}
	return code[:1] + code[len(code)-1:]
}
