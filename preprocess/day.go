package preprocess

import (
	"fmt"
	"time"

	"github.com/cwbudde/algo-mfdetect/waveform"
)

// DayStart returns the UTC midnight of the day the segments belong to. A
// segment starting less than one sample before midnight belongs to the next
// day. Segments on different days fail with ErrMixedDays.
func DayStart(segs []waveform.Segment) (time.Time, error) {
	if len(segs) == 0 {
		return time.Time{}, ErrNoSegments
	}

	var day time.Time
	for i, seg := range segs {
		start := seg.Start.UTC()
		d := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		if next := d.AddDate(0, 0, 1); next.Sub(start) < seg.Delta() {
			d = next
		}

		if i == 0 {
			day = d
			continue
		}
		if !d.Equal(day) {
			return time.Time{}, fmt.Errorf("%w: %s is on %s, expected %s",
				ErrMixedDays, seg.ID, d.Format(time.DateOnly), day.Format(time.DateOnly))
		}
	}
	return day, nil
}
