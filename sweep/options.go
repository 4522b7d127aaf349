package sweep

import (
	"log/slog"
	"time"
)

// Precision selects the storage width of the running sums.
//
// Float32 halves the memory held per template (one value per lag of the
// epoch) at the cost of about seven significant digits in the sum, which is
// ample for thresholds on the order of 1e-1 to 1e1.
type Precision int

const (
	// Float64 accumulates in double precision.
	Float64 Precision = iota
	// Float32 accumulates in single precision.
	Float32
)

func (p Precision) String() string {
	if p == Float32 {
		return "float32"
	}
	return "float64"
}

// Observer receives sweep counters.
type Observer interface {
	CorrelationsComputed(n int)
	SweepFinished(d time.Duration)
}

type config struct {
	workers     int
	logger      *slog.Logger
	precision   Precision
	epochLength time.Duration
	observer    Observer
}

// Option configures Sweep.
type Option func(*config)

// WithWorkers bounds the number of concurrent correlation tasks. Values
// below one mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(cfg *config) {
		cfg.workers = n
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithPrecision selects the accumulator width.
func WithPrecision(p Precision) Option {
	return func(cfg *config) {
		cfg.precision = p
	}
}

// WithEpochLength declares the fixed length the epoch must span.
func WithEpochLength(d time.Duration) Option {
	return func(cfg *config) {
		cfg.epochLength = d
	}
}

// WithObserver reports counters to o.
func WithObserver(o Observer) Option {
	return func(cfg *config) {
		cfg.observer = o
	}
}
