package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/cwbudde/algo-mfdetect/detect"
)

var _ detect.Observer = (*Collector)(nil)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()
	c.CorrelationsComputed(6)
	c.CorrelationsComputed(2)
	c.ChannelsExcluded(1)
	c.DetectionsEmitted("quake", 3)
	c.DetectionsEmitted("quake", 1)
	c.DetectionsEmitted("quiet", 0)
	c.SweepFinished(250 * time.Millisecond)

	if got := testutil.ToFloat64(c.correlations); got != 8 {
		t.Errorf("correlations = %v, want 8", got)
	}
	if got := testutil.ToFloat64(c.excluded); got != 1 {
		t.Errorf("excluded = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.detections.WithLabelValues("quake")); got != 4 {
		t.Errorf("quake detections = %v, want 4", got)
	}
	if got := testutil.CollectAndCount(c.detections); got != 2 {
		t.Errorf("detection series = %d, want 2", got)
	}
	if got := testutil.CollectAndCount(c.sweeps); got != 1 {
		t.Errorf("sweep histograms = %d, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	c := NewCollector()
	c.DetectionsEmitted("quake", 2)

	r := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, `mfdetect_detections_total{template="quake"} 2`) {
		t.Fatalf("body lacks detection counter:\n%s", body)
	}
}

func TestWriteTextfile(t *testing.T) {
	c := NewCollector()
	c.CorrelationsComputed(4)

	path := filepath.Join(t.TempDir(), "mfdetect.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "mfdetect_correlations_total 4") {
		t.Fatalf("textfile:\n%s", data)
	}
}
