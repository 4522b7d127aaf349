package detect_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cwbudde/algo-mfdetect/detect"
	"github.com/cwbudde/algo-mfdetect/internal/testutil"
	"github.com/cwbudde/algo-mfdetect/preprocess"
	"github.com/cwbudde/algo-mfdetect/threshold"
	"github.com/cwbudde/algo-mfdetect/waveform"
)

func ExampleDetector_Run() {
	const rate = 20.0
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	z := waveform.ChannelID{Network: "NZ", Station: "FOZ", Channel: "HHZ"}
	n := waveform.ChannelID{Network: "NZ", Station: "FOZ", Channel: "HHN"}

	p := testutil.Ricker(3, rate, 40)
	s := testutil.Ricker(2, rate, 40)
	tmpl, _ := waveform.NewTemplate("quake",
		waveform.Segment{ID: z, Start: start, SampleRate: rate, Data: p},
		waveform.Segment{ID: n, Start: start.Add(400 * time.Millisecond), SampleRate: rate, Data: s},
	)

	// One event 25 s into the data, S arriving 8 samples after P.
	contZ := testutil.DeterministicNoise(1, 0.2, 2000)
	contN := testutil.DeterministicNoise(2, 0.2, 2000)
	copy(contZ[500:], p)
	copy(contN[508:], s)
	contZ[0], contZ[1999], contN[0], contN[1999] = 0, 0, 0, 0

	det := detect.New(detect.Config{
		Preprocess:      preprocess.Options{FillGaps: true},
		Policy:          threshold.Absolute,
		Threshold:       1.5,
		TriggerInterval: time.Second,
	}, detect.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	res, err := det.Run(context.Background(), []waveform.Template{tmpl}, []waveform.Segment{
		{ID: z, Start: start, SampleRate: rate, Data: contZ},
		{ID: n, Start: start, SampleRate: rate, Data: contN},
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, d := range res.Detections {
		fmt.Printf("%s %s value=%.2f channels=%d\n",
			d.Template(), d.Time().Format(time.RFC3339), d.Value(), d.Channels())
	}
	// Output:
	// quake 2024-03-01T00:00:25Z value=2.00 channels=2
}
