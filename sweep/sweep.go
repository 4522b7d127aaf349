package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"time"

	"github.com/cwbudde/algo-vecmath"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-mfdetect/stats/trace"
	"github.com/cwbudde/algo-mfdetect/waveform"
	"github.com/cwbudde/algo-mfdetect/xcorr"
)

var (
	// ErrEpochLengthMismatch indicates an epoch that does not span the
	// declared fixed length.
	ErrEpochLengthMismatch = errors.New("sweep: epoch length mismatch")
	// ErrNoTemplates indicates an empty template set.
	ErrNoTemplates = errors.New("sweep: no templates")
)

// Sum is the summed correlation of one template. Values and Channels are
// always produced together.
type Sum struct {
	Template string
	Values   []float64

	// Channels counts template channels whose trace was not all zero.
	Channels int
	// ChannelIDs lists those channels, one entry per counted template
	// channel, in channel order.
	ChannelIDs []waveform.ChannelID
}

// Result holds one Sum per template, in template order.
type Result struct {
	Sums []Sum
}

// accumulator is a running sum at the configured precision.
type accumulator struct {
	f64 []float64
	f32 []float32
}

func newAccumulator(n int, p Precision) accumulator {
	if p == Float32 {
		return accumulator{f32: make([]float32, n)}
	}
	return accumulator{f64: make([]float64, n)}
}

func (a accumulator) add(x []float64) {
	if a.f32 == nil {
		vecmath.AddBlockInPlace(a.f64, x)
		return
	}
	for i, v := range x {
		a.f32[i] += float32(v)
	}
}

func (a accumulator) values() []float64 {
	if a.f32 == nil {
		return a.f64
	}
	out := make([]float64, len(a.f32))
	for i, v := range a.f32 {
		out[i] = float64(v)
	}
	return out
}

// task correlates one template channel against one continuous channel.
type task struct {
	template int
	channel  int
}

// Sweep correlates every template channel against the matching epoch
// channel and returns the per-template sums.
//
// Structural errors abort the whole sweep: a template longer than the
// epoch, a sample-rate mismatch, or an epoch that does not span the length
// given by WithEpochLength. Any task failure cancels the remaining work and
// no partial result is returned.
func Sweep(ctx context.Context, templates []waveform.Template, epoch waveform.Epoch, opts ...Option) (Result, error) {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.workers < 1 {
		cfg.workers = runtime.GOMAXPROCS(0)
	}

	if err := validate(templates, epoch, cfg); err != nil {
		return Result{}, err
	}

	begin := time.Now()
	sums := make([]accumulator, len(templates))
	counts := make([]int, len(templates))
	ids := make([][]waveform.ChannelID, len(templates))
	for i, t := range templates {
		sums[i] = newAccumulator(epoch.Len()-t.Len()+1, cfg.precision)
	}

	correlations := 0
	for _, slot := range epoch.Slots() {
		if !slot.IsPresent() {
			cfg.logger.Debug("channel missing from epoch", slog.String("channel", slot.ID().String()))
			continue
		}

		var tasks []task
		for ti, t := range templates {
			for _, ci := range t.Select(slot.ID()) {
				tasks = append(tasks, task{template: ti, channel: ci})
			}
		}
		if len(tasks) == 0 {
			continue
		}

		traces, err := correlateChannel(ctx, templates, slot, tasks, cfg.workers)
		if err != nil {
			return Result{}, err
		}
		correlations += len(tasks)

		for i, tk := range tasks {
			tr := traces[i]
			if m := trace.Mean(tr); math.IsNaN(m) || math.IsInf(m, 0) {
				cfg.logger.Warn("mean of correlation trace is not finite, dropping channel",
					slog.String("template", templates[tk.template].Name()),
					slog.String("channel", slot.ID().String()))
				continue
			}
			sums[tk.template].add(tr)
			if !trace.AllZero(tr) {
				counts[tk.template]++
				ids[tk.template] = append(ids[tk.template], slot.ID())
			}
		}
	}

	res := Result{Sums: make([]Sum, len(templates))}
	for i, t := range templates {
		values := sums[i].values()
		res.Sums[i] = Sum{
			Template:   t.Name(),
			Values:     values,
			Channels:   counts[i],
			ChannelIDs: ids[i],
		}
		if cfg.logger.Enabled(ctx, slog.LevelDebug) {
			_, peak := trace.Max(values)
			mean, variance := trace.Moments(values)
			cfg.logger.Debug("summed correlation",
				slog.String("template", t.Name()),
				slog.Int("channels", counts[i]),
				slog.Float64("max", peak),
				slog.Float64("mean", mean),
				slog.Float64("std", math.Sqrt(variance)))
		}
	}

	if cfg.observer != nil {
		cfg.observer.CorrelationsComputed(correlations)
		cfg.observer.SweepFinished(time.Since(begin))
	}
	return res, nil
}

func validate(templates []waveform.Template, epoch waveform.Epoch, cfg config) error {
	if len(templates) == 0 {
		return ErrNoTemplates
	}
	if cfg.epochLength > 0 {
		want := int(math.Round(cfg.epochLength.Seconds() * epoch.SampleRate()))
		if epoch.Len() != want {
			return fmt.Errorf("%w: %d samples, want %d (%v at %v Hz)",
				ErrEpochLengthMismatch, epoch.Len(), want, cfg.epochLength, epoch.SampleRate())
		}
	}
	for _, t := range templates {
		if t.SampleRate() != epoch.SampleRate() {
			return fmt.Errorf("%w: template %q at %v Hz, epoch at %v Hz",
				waveform.ErrSampleRateMismatch, t.Name(), t.SampleRate(), epoch.SampleRate())
		}
		if t.Len() > epoch.Len() {
			return fmt.Errorf("sweep: template %q: %w", t.Name(), xcorr.ErrLengthMismatch)
		}
	}
	return nil
}

// correlateChannel runs the tasks for one continuous channel and returns
// their traces indexed like tasks.
func correlateChannel(ctx context.Context, templates []waveform.Template, slot waveform.Slot, tasks []task, workers int) ([][]float64, error) {
	data := slot.Data()
	traces := make([][]float64, len(tasks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(min(workers, len(tasks)))
	for i, tk := range tasks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ch := templates[tk.template].Channel(tk.channel)
			r, err := xcorr.Correlate(ch.Data, shift(data, ch.DelaySamples()))
			if err != nil {
				return fmt.Errorf("sweep: template %q channel %s: %w",
					templates[tk.template].Name(), ch.ID, err)
			}
			traces[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return traces, nil
}

// shift returns data advanced by delay samples with a zero tail, so lag k
// of the result lines up with the earliest template channel.
func shift(data []float64, delay int) []float64 {
	if delay <= 0 {
		return data
	}
	out := make([]float64, len(data))
	if delay < len(data) {
		copy(out, data[delay:])
	}
	return out
}
