// Package metrics exposes detection run counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mfdetect"

// Collector counts sweep work and detections on its own registry. It
// satisfies detect.Observer.
type Collector struct {
	registry *prometheus.Registry

	correlations prometheus.Counter
	excluded     prometheus.Counter
	detections   *prometheus.CounterVec
	sweeps       prometheus.Histogram
}

// NewCollector returns a collector with every metric registered.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		correlations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "correlations_total",
			Help:      "Template channel correlations computed.",
		}),
		excluded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channels_excluded_total",
			Help:      "Continuous channels excluded by preprocessing.",
		}),
		detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Detections emitted, by template.",
		}, []string{"template"}),
		sweeps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Wall time of one correlation sweep.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
	}
	c.registry.MustRegister(c.correlations, c.excluded, c.detections, c.sweeps)
	return c
}

// CorrelationsComputed adds n correlations.
func (c *Collector) CorrelationsComputed(n int) {
	c.correlations.Add(float64(n))
}

// SweepFinished records the duration of one sweep.
func (c *Collector) SweepFinished(d time.Duration) {
	c.sweeps.Observe(d.Seconds())
}

// ChannelsExcluded adds n excluded channels.
func (c *Collector) ChannelsExcluded(n int) {
	c.excluded.Add(float64(n))
}

// DetectionsEmitted adds n detections for template. Zero still creates the
// series so quiet templates are visible.
func (c *Collector) DetectionsEmitted(template string, n int) {
	c.detections.WithLabelValues(template).Add(float64(n))
}

// Handler serves the metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the current metrics to path for a node exporter
// textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
