package preprocess

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-mfdetect/waveform"
)

// PrepareAll prepares every segment concurrently using up to workers
// goroutines (0 means GOMAXPROCS). Prepared segments keep the input order.
//
// Per-channel data-quality failures do not abort the batch; they are
// returned as ChannelErrors and the channel is left out of prepared. An
// invalid filter spec or a cancelled context aborts the batch.
func PrepareAll(ctx context.Context, segs []waveform.Segment, opts Options, workers int) ([]waveform.Segment, []*ChannelError, error) {
	rate := opts.TargetRate
	if rate == 0 && len(segs) > 0 {
		rate = segs[0].SampleRate
	}
	spec := opts.Filter
	if err := spec.Validate(rate); err != nil {
		return nil, nil, err
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]waveform.Segment, len(segs))
	errs := make([]error, len(segs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(workers, len(segs))))
	for i, seg := range segs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = Prepare(seg, opts)
			if errors.Is(errs[i], ErrInvalidFilterSpec) {
				return errs[i]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	log := opts.logger()
	prepared := make([]waveform.Segment, 0, len(segs))
	var failed []*ChannelError
	for i, err := range errs {
		if err != nil {
			log.Warn("excluding channel", slog.String("channel", segs[i].ID.String()), slog.Any("Error", err))
			failed = append(failed, &ChannelError{ID: segs[i].ID, Err: err})
			continue
		}
		prepared = append(prepared, results[i])
	}
	return prepared, failed, nil
}
