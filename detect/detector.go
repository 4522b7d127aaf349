package detect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-mfdetect/peaks"
	"github.com/cwbudde/algo-mfdetect/preprocess"
	"github.com/cwbudde/algo-mfdetect/stats/trace"
	"github.com/cwbudde/algo-mfdetect/sweep"
	"github.com/cwbudde/algo-mfdetect/threshold"
	"github.com/cwbudde/algo-mfdetect/waveform"
)

// ErrNoData indicates that no continuous channel survived preparation.
var ErrNoData = errors.New("detect: no usable continuous data")

// Config holds the detection parameters of one run.
type Config struct {
	Preprocess preprocess.Options

	Policy    threshold.Policy
	Threshold float64

	// TriggerInterval is the minimum separation between detections of one
	// template.
	TriggerInterval time.Duration

	// Workers bounds preprocessing and correlation concurrency; 0 means
	// GOMAXPROCS.
	Workers   int
	Precision sweep.Precision
}

// Observer receives run counters.
type Observer interface {
	sweep.Observer
	ChannelsExcluded(n int)
	DetectionsEmitted(template string, n int)
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger; it is also handed to every stage.
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithObserver reports run counters to o.
func WithObserver(o Observer) Option {
	return func(d *Detector) {
		d.observer = o
	}
}

// Detector runs matched-filter detection.
type Detector struct {
	cfg      Config
	logger   *slog.Logger
	observer Observer
}

// New returns a detector for cfg.
func New(cfg Config, opts ...Option) *Detector {
	d := &Detector{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Result is the outcome of one run.
type Result struct {
	RunID      uuid.UUID
	EpochStart time.Time
	Detections []Detection

	// Excluded lists continuous channels dropped by preprocessing.
	Excluded []*preprocess.ChannelError
	// Skipped names templates left with no contributing channel.
	Skipped []string
	// Thresholds holds the threshold applied per template.
	Thresholds map[string]threshold.Threshold
}

// PrepareTemplate runs the preprocessing pipeline over every channel of t
// without length enforcement, keeping each channel's start time, so
// templates and continuous data are filtered and resampled alike.
func (d *Detector) PrepareTemplate(t waveform.Template) (waveform.Template, error) {
	opts := d.cfg.Preprocess
	opts.EpochStart = time.Time{}
	opts.EpochLength = 0
	opts.FillGaps = true
	opts.Logger = d.logger

	segs := make([]waveform.Segment, 0, t.NumChannels())
	for _, ch := range t.Channels() {
		seg, err := preprocess.Prepare(ch.Segment, opts)
		if err != nil {
			return waveform.Template{}, fmt.Errorf("detect: template %q: %w", t.Name(), err)
		}
		segs = append(segs, seg)
	}
	return waveform.NewTemplate(t.Name(), segs...)
}

// Run prepares raw continuous segments and detects every template in them.
// Templates must already be at the target sample rate. An invalid filter
// specification fails before any work; channels failing preprocessing are
// excluded and reported in Result.Excluded.
func (d *Detector) Run(ctx context.Context, templates []waveform.Template, raw []waveform.Segment) (Result, error) {
	runID := uuid.New()
	log := d.logger.With(slog.String("run", runID.String()))

	if len(raw) == 0 {
		return Result{}, ErrNoData
	}
	popts := d.cfg.Preprocess
	popts.Logger = log
	rate := popts.TargetRate
	if rate == 0 {
		rate = raw[0].SampleRate
	}
	if err := popts.Filter.Validate(rate); err != nil {
		return Result{}, err
	}

	if popts.EpochLength > 0 && popts.EpochStart.IsZero() {
		day, err := preprocess.DayStart(raw)
		if err != nil {
			return Result{}, fmt.Errorf("detect: %w", err)
		}
		popts.EpochStart = day
		log.Info("inferred epoch start", slog.Time("start", day))
	}

	prepared, excluded, err := preprocess.PrepareAll(ctx, raw, popts, d.cfg.Workers)
	if err != nil {
		return Result{}, err
	}
	if d.observer != nil && len(excluded) > 0 {
		d.observer.ChannelsExcluded(len(excluded))
	}

	templates, epoch, skipped, err := prepareForCorrelation(templates, prepared, excluded, log)
	if err != nil {
		return Result{}, err
	}

	sweepOpts := []sweep.Option{
		sweep.WithWorkers(d.cfg.Workers),
		sweep.WithLogger(log),
		sweep.WithPrecision(d.cfg.Precision),
	}
	if popts.EpochLength > 0 {
		sweepOpts = append(sweepOpts, sweep.WithEpochLength(popts.EpochLength))
	}
	if d.observer != nil {
		sweepOpts = append(sweepOpts, sweep.WithObserver(d.observer))
	}
	sums, err := sweep.Sweep(ctx, templates, epoch, sweepOpts...)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		RunID:      runID,
		EpochStart: epoch.Start(),
		Excluded:   excluded,
		Skipped:    skipped,
		Thresholds: make(map[string]threshold.Threshold, len(sums.Sums)),
	}
	emitter := NewEmitter(runID, NewIDGenerator(), KindCorr)
	minSep := max(1, int(math.Round(d.cfg.TriggerInterval.Seconds()*epoch.SampleRate())))

	for _, sum := range sums.Sums {
		if sum.Channels == 0 {
			log.Warn("template has no contributing channels, skipping", slog.String("template", sum.Template))
			res.Skipped = append(res.Skipped, sum.Template)
			continue
		}

		th := threshold.Compute(sum.Values, d.cfg.Policy, d.cfg.Threshold, sum.Channels,
			threshold.WithLogger(log.With(slog.String("template", sum.Template))))
		res.Thresholds[sum.Template] = th

		ps, err := pick(sum.Values, th, minSep)
		if err != nil {
			return Result{}, err
		}
		found := emitter.Emit(sum.Template, ps, sum.Channels, sum.ChannelIDs, th, epoch.Start(), epoch.SampleRate())
		if len(found) > 0 {
			log.Info("detections", slog.String("template", sum.Template), slog.Int("count", len(found)))
		}
		if d.observer != nil {
			d.observer.DetectionsEmitted(sum.Template, len(found))
		}
		res.Detections = append(res.Detections, found...)
	}

	return res, nil
}

func pick(values []float64, th threshold.Threshold, minSep int) ([]peaks.Peak, error) {
	if th.PerSample() {
		return peaks.FindVarying(values, th.Values, minSep)
	}
	if _, peak := trace.Max(values); !(peak > th.Value) {
		return nil, nil
	}
	return peaks.Find(values, th.Value, minSep), nil
}

// prepareForCorrelation lines the prepared continuous channels up with the
// templates. Template channels never supplied as continuous data are
// dropped from their templates; templates left empty are skipped.
// Continuous channels no template uses are dropped. Channels excluded by
// preprocessing stay in the epoch as Missing slots. Continuous segments of
// differing spans are zero-padded to a common span.
func prepareForCorrelation(templates []waveform.Template, prepared []waveform.Segment,
	excluded []*preprocess.ChannelError, log *slog.Logger,
) ([]waveform.Template, waveform.Epoch, []string, error) {
	supplied := make(map[waveform.ChannelID]bool, len(prepared)+len(excluded))
	for _, seg := range prepared {
		if supplied[seg.ID] {
			return nil, waveform.Epoch{}, nil, fmt.Errorf("detect: %w: %s", waveform.ErrDuplicateChannel, seg.ID)
		}
		supplied[seg.ID] = true
	}
	for _, ce := range excluded {
		supplied[ce.ID] = true
	}

	var skipped []string
	used := make(map[waveform.ChannelID]bool)
	kept := make([]waveform.Template, 0, len(templates))
	for _, t := range templates {
		for _, id := range t.IDs() {
			if !supplied[id] {
				log.Info("removing template channel with no continuous data",
					slog.String("template", t.Name()), slog.String("channel", id.String()))
			}
		}
		rt, ok := t.Restrict(func(id waveform.ChannelID) bool { return supplied[id] })
		if !ok {
			log.Warn("no channels matching in continuous data for template", slog.String("template", t.Name()))
			skipped = append(skipped, t.Name())
			continue
		}
		for _, id := range rt.IDs() {
			used[id] = true
		}
		kept = append(kept, rt)
	}
	if len(kept) == 0 {
		return nil, waveform.Epoch{}, skipped, sweep.ErrNoTemplates
	}

	segs := make([]waveform.Segment, 0, len(prepared))
	for _, seg := range prepared {
		if !used[seg.ID] {
			log.Info("removing continuous channel with no template match", slog.String("channel", seg.ID.String()))
			continue
		}
		segs = append(segs, seg)
	}
	if len(segs) == 0 {
		return nil, waveform.Epoch{}, skipped, ErrNoData
	}

	epoch, err := waveform.EpochFromSegments(alignSpans(segs, log)...)
	if err != nil {
		return nil, waveform.Epoch{}, skipped, fmt.Errorf("detect: %w", err)
	}

	var missing []waveform.ChannelID
	for _, ce := range excluded {
		if used[ce.ID] {
			missing = append(missing, ce.ID)
		}
	}
	return kept, epoch.WithMissing(missing...), skipped, nil
}

// alignSpans zero-pads segments to the common span from the earliest start
// to the latest end. Segments already spanning it are returned unchanged.
func alignSpans(segs []waveform.Segment, log *slog.Logger) []waveform.Segment {
	start, end := segs[0].Start, segs[0].End()
	for _, s := range segs[1:] {
		if s.Start.Before(start) {
			start = s.Start
		}
		if s.End().After(end) {
			end = s.End()
		}
	}

	rate := segs[0].SampleRate
	length := int(math.Round(end.Sub(start).Seconds() * rate))
	out := slices.Clone(segs)
	for i, s := range out {
		if s.Len() == length && s.Start.Equal(start) {
			continue
		}
		log.Info("continuous data not as long as needed, padding", slog.String("channel", s.ID.String()))
		pre := min(length, max(0, int(math.Round(-s.Offset(start)))))
		data := make([]float64, length)
		copy(data[pre:], s.Data)
		out[i] = s.WithData(data)
		out[i].Start = start
	}
	return out
}
