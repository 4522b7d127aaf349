package detect

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-mfdetect/peaks"
	"github.com/cwbudde/algo-mfdetect/threshold"
	"github.com/cwbudde/algo-mfdetect/waveform"
)

// Kind tags how a detection was made.
type Kind string

// KindCorr is a correlation-threshold detection.
const KindCorr Kind = "corr"

// Detection is one immutable detection record.
type Detection struct {
	seq       uint64
	runID     uuid.UUID
	template  string
	time      time.Time
	index     int
	channels  int
	value     float64
	threshold float64
	kind      Kind
	chans     []waveform.ChannelID
}

// ID returns "<template>_<UTC time to the microsecond>".
func (d Detection) ID() string {
	return d.template + "_" + d.time.UTC().Format("20060102_150405.000000")
}

// Seq returns the run-scoped sequence number.
func (d Detection) Seq() uint64 { return d.seq }

// RunID returns the identifier of the run that produced the detection.
func (d Detection) RunID() uuid.UUID { return d.runID }

// Template returns the template name.
func (d Detection) Template() string { return d.template }

// Time returns epoch start + Index / sample rate.
func (d Detection) Time() time.Time { return d.time }

// Index returns the lag index of the peak in the summed trace.
func (d Detection) Index() int { return d.index }

// Channels returns the number of channels in the sum.
func (d Detection) Channels() int { return d.channels }

// Value returns the raw summed correlation at the peak.
func (d Detection) Value() float64 { return d.value }

// Threshold returns the threshold in effect at the peak.
func (d Detection) Threshold() float64 { return d.threshold }

// Kind returns the detection kind.
func (d Detection) Kind() Kind { return d.kind }

// Chans returns the contributing channels.
func (d Detection) Chans() []waveform.ChannelID { return slices.Clone(d.chans) }

func (d Detection) String() string {
	return fmt.Sprintf("%s %s value=%.4f threshold=%.4f channels=%d kind=%s",
		d.template, d.time.UTC().Format(time.RFC3339Nano), d.value, d.threshold, d.channels, d.kind)
}

// IDGenerator hands out sequence numbers for one run. It is safe for
// concurrent use.
type IDGenerator struct {
	mu   sync.Mutex
	next uint64
}

// NewIDGenerator returns a generator whose first number is 1.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{next: 1}
}

// Next returns the next sequence number.
func (g *IDGenerator) Next() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.next
	g.next++
	return n
}

// Emitter assembles detections. It performs no selection of its own.
type Emitter struct {
	runID uuid.UUID
	ids   *IDGenerator
	kind  Kind
}

// NewEmitter returns an emitter stamping runID and kind on every detection.
// A nil ids gets a fresh generator.
func NewEmitter(runID uuid.UUID, ids *IDGenerator, kind Kind) *Emitter {
	if ids == nil {
		ids = NewIDGenerator()
	}
	return &Emitter{runID: runID, ids: ids, kind: kind}
}

// Emit turns peaks of one template's summed trace into detections, one per
// peak, timed at epochStart + index/sampleRate.
func (e *Emitter) Emit(template string, ps []peaks.Peak, channels int, chans []waveform.ChannelID,
	th threshold.Threshold, epochStart time.Time, sampleRate float64,
) []Detection {
	out := make([]Detection, 0, len(ps))
	for _, p := range ps {
		out = append(out, Detection{
			seq:       e.ids.Next(),
			runID:     e.runID,
			template:  template,
			time:      epochStart.Add(waveform.Seconds(float64(p.Index) / sampleRate)),
			index:     p.Index,
			channels:  channels,
			value:     p.Value,
			threshold: th.At(p.Index),
			kind:      e.kind,
			chans:     slices.Clone(chans),
		})
	}
	return out
}
