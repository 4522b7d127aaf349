package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cwbudde/algo-mfdetect/waveform"
)

// manifest is the JSON input: templates plus the continuous segments to scan.
type manifest struct {
	Templates  []templateEntry `json:"templates"`
	Continuous []segmentEntry  `json:"continuous"`
}

type templateEntry struct {
	Name     string         `json:"name"`
	Channels []segmentEntry `json:"channels"`
}

type segmentEntry struct {
	ID         string     `json:"id"`
	Start      time.Time  `json:"start"`
	SampleRate float64    `json:"sample_rate"`
	Data       []*float64 `json:"data"` // null marks a missing sample
	Gaps       []gapEntry `json:"gaps,omitempty"`
}

type gapEntry struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func readManifest(r io.Reader) (manifest, error) {
	var m manifest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if len(m.Templates) == 0 {
		return manifest{}, fmt.Errorf("manifest has no templates")
	}
	if len(m.Continuous) == 0 {
		return manifest{}, fmt.Errorf("manifest has no continuous data")
	}
	return m, nil
}

func (e segmentEntry) segment() (waveform.Segment, error) {
	id, err := waveform.ParseChannelID(e.ID)
	if err != nil {
		return waveform.Segment{}, err
	}
	data := make([]float64, len(e.Data))
	for i, v := range e.Data {
		if v == nil {
			data[i] = waveform.NoData()
			continue
		}
		data[i] = *v
	}
	seg := waveform.Segment{ID: id, Start: e.Start.UTC(), SampleRate: e.SampleRate, Data: data}
	for _, g := range e.Gaps {
		seg.Gaps = append(seg.Gaps, waveform.Gap{Start: g.Start.UTC(), End: g.End.UTC()})
	}
	return seg, seg.Validate()
}

func (m manifest) templates() ([]waveform.Template, error) {
	out := make([]waveform.Template, 0, len(m.Templates))
	for _, te := range m.Templates {
		segs := make([]waveform.Segment, 0, len(te.Channels))
		for _, ce := range te.Channels {
			seg, err := ce.segment()
			if err != nil {
				return nil, fmt.Errorf("template %q: %w", te.Name, err)
			}
			segs = append(segs, seg)
		}
		t, err := waveform.NewTemplate(te.Name, segs...)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (m manifest) continuous() ([]waveform.Segment, error) {
	out := make([]waveform.Segment, 0, len(m.Continuous))
	for _, ce := range m.Continuous {
		seg, err := ce.segment()
		if err != nil {
			return nil, fmt.Errorf("continuous: %w", err)
		}
		out = append(out, seg)
	}
	return out, nil
}
