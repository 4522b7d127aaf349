package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cwbudde/algo-mfdetect/sweep"
	"github.com/cwbudde/algo-mfdetect/threshold"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mfdetect.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndValidate(t *testing.T) {
	path := writeConfig(t, `
processing:
  sample_rate: 50
  lowcut: 2
  highcut: 9
  filter_order: 4
  fill_gaps: true
  seisan_chan_names: true
  epoch_length: 24h
  epoch_start: "2024-03-01"

detection:
  threshold_type: MAD
  threshold: 8
  trig_int: 6s
  workers: 4
  precision: float32

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Processing.SampleRate != 50 {
		t.Errorf("Unexpected sample rate: %v", cfg.Processing.SampleRate)
	}
	if cfg.Detection.TrigInt != 6*time.Second {
		t.Errorf("Unexpected trig_int: %v", cfg.Detection.TrigInt)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Unexpected log format: %s", cfg.Logging.Format)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	dc, err := cfg.DetectorConfig()
	if err != nil {
		t.Fatalf("DetectorConfig failed: %v", err)
	}
	if want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC); !dc.Preprocess.EpochStart.Equal(want) {
		t.Errorf("Unexpected epoch start: %v", dc.Preprocess.EpochStart)
	}
	if dc.Preprocess.Filter.HighCut != 9 || !dc.Preprocess.Filter.ZeroPhase {
		t.Errorf("Unexpected filter: %+v", dc.Preprocess.Filter)
	}
	if dc.Policy != threshold.MAD || dc.Threshold != 8 {
		t.Errorf("Unexpected threshold: %s %v", dc.Policy, dc.Threshold)
	}
	if !dc.Preprocess.SeisanChannelNames {
		t.Error("seisan_chan_names not carried into preprocess options")
	}
	if dc.Precision != sweep.Float32 || dc.Workers != 4 {
		t.Errorf("Unexpected precision or workers: %v %d", dc.Precision, dc.Workers)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.Processing.EpochLength != 24*time.Hour || !cfg.Processing.FillGaps {
		t.Errorf("Unexpected processing defaults: %+v", cfg.Processing)
	}
	if cfg.Detection.ThresholdType != "MAD" || cfg.Detection.Threshold != 8 {
		t.Errorf("Unexpected detection defaults: %+v", cfg.Detection)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Unexpected log level: %s", cfg.Logging.Level)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MFDETECT_DETECTION_THRESHOLD", "0.7")
	t.Setenv("MFDETECT_DETECTION_THRESHOLD_TYPE", "absolute")

	cfg, err := Load(writeConfig(t, "detection:\n  threshold: 8\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Detection.Threshold != 0.7 {
		t.Errorf("threshold = %v, want env override 0.7", cfg.Detection.Threshold)
	}
	if cfg.Detection.ThresholdType != "absolute" {
		t.Errorf("threshold_type = %s, want absolute", cfg.Detection.ThresholdType)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func validConfig() *Config {
	return &Config{
		Processing: ProcessingConfig{
			SampleRate:  50,
			LowCut:      2,
			HighCut:     9,
			FilterOrder: 4,
			FillGaps:    true,
			EpochLength: 24 * time.Hour,
		},
		Detection: DetectionConfig{
			ThresholdType: "MAD",
			Threshold:     8,
			TrigInt:       time.Second,
			Precision:     "float64",
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "negative sample rate", mutate: func(c *Config) { c.Processing.SampleRate = -1 }, wantErr: true},
		{name: "highcut above nyquist", mutate: func(c *Config) { c.Processing.HighCut = 30 }, wantErr: true},
		{name: "lowcut above highcut", mutate: func(c *Config) { c.Processing.LowCut = 10 }, wantErr: true},
		{name: "zero order with filter", mutate: func(c *Config) { c.Processing.FilterOrder = 0 }, wantErr: true},
		{name: "no filter and no order", mutate: func(c *Config) {
			c.Processing.LowCut, c.Processing.HighCut, c.Processing.FilterOrder = 0, 0, 0
		}},
		{name: "source rate skips nyquist check", mutate: func(c *Config) {
			c.Processing.SampleRate, c.Processing.HighCut = 0, 30
		}},
		{name: "negative epoch length", mutate: func(c *Config) { c.Processing.EpochLength = -time.Hour }, wantErr: true},
		{name: "bad epoch start", mutate: func(c *Config) { c.Processing.EpochStart = "yesterday" }, wantErr: true},
		{name: "rfc3339 epoch start", mutate: func(c *Config) { c.Processing.EpochStart = "2024-03-01T00:00:00Z" }},
		{name: "unknown threshold type is soft", mutate: func(c *Config) { c.Detection.ThresholdType = "percentile" }},
		{name: "negative trig_int", mutate: func(c *Config) { c.Detection.TrigInt = -time.Second }, wantErr: true},
		{name: "negative workers", mutate: func(c *Config) { c.Detection.Workers = -1 }, wantErr: true},
		{name: "bad precision", mutate: func(c *Config) { c.Detection.Precision = "float16" }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
		{name: "textfile without metrics", mutate: func(c *Config) { c.Metrics.Textfile = "/tmp/m.prom" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDetectorConfigUnknownPolicyPassesThrough(t *testing.T) {
	cfg := validConfig()
	cfg.Detection.ThresholdType = "percentile"
	dc, err := cfg.DetectorConfig()
	if err != nil {
		t.Fatal(err)
	}
	if dc.Policy != "percentile" {
		t.Errorf("policy = %q, want pass-through", dc.Policy)
	}

	cfg.Detection.ThresholdType = "av_CHAN_corr"
	if dc, _ = cfg.DetectorConfig(); dc.Policy != threshold.ChannelAverage {
		t.Errorf("policy = %q, want %q", dc.Policy, threshold.ChannelAverage)
	}
}
