// Package config loads the detection host configuration from a file and the
// environment.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cwbudde/algo-mfdetect/detect"
	"github.com/cwbudde/algo-mfdetect/dsp/filter"
	"github.com/cwbudde/algo-mfdetect/preprocess"
	"github.com/cwbudde/algo-mfdetect/sweep"
	"github.com/cwbudde/algo-mfdetect/threshold"
)

// EnvPrefix prefixes environment overrides, e.g. MFDETECT_DETECTION_THRESHOLD.
const EnvPrefix = "MFDETECT"

// Config represents the complete host configuration
type Config struct {
	Processing ProcessingConfig `mapstructure:"processing"`
	Detection  DetectionConfig  `mapstructure:"detection"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// ProcessingConfig holds preprocessing parameters shared by templates and
// continuous data
type ProcessingConfig struct {
	SampleRate   float64 `mapstructure:"sample_rate"`
	LowCut       float64 `mapstructure:"lowcut"`
	HighCut      float64 `mapstructure:"highcut"`
	FilterOrder  int     `mapstructure:"filter_order"`
	FillGaps     bool    `mapstructure:"fill_gaps"`
	IgnoreLength bool    `mapstructure:"ignore_length"`
	// SeisanChanNames collapses channel codes to two letters (HHZ -> HZ).
	SeisanChanNames bool          `mapstructure:"seisan_chan_names"`
	EpochLength     time.Duration `mapstructure:"epoch_length"`
	// EpochStart is an RFC 3339 time or a YYYY-MM-DD date. Empty infers the
	// UTC day start from the data when EpochLength is set.
	EpochStart string `mapstructure:"epoch_start"`
}

// DetectionConfig holds threshold and peak-picking parameters
type DetectionConfig struct {
	ThresholdType string        `mapstructure:"threshold_type"`
	Threshold     float64       `mapstructure:"threshold"`
	TrigInt       time.Duration `mapstructure:"trig_int"`
	Workers       int           `mapstructure:"workers"`
	Precision     string        `mapstructure:"precision"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Textfile receives the metrics in Prometheus text format after a run.
	Textfile string `mapstructure:"textfile"`
}

// Load reads configuration from file and environment variables. An empty
// path loads defaults and environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Processing defaults
	v.SetDefault("processing.sample_rate", 0.0)
	v.SetDefault("processing.lowcut", 0.0)
	v.SetDefault("processing.highcut", 0.0)
	v.SetDefault("processing.filter_order", 4)
	v.SetDefault("processing.fill_gaps", true)
	v.SetDefault("processing.ignore_length", false)
	v.SetDefault("processing.seisan_chan_names", false)
	v.SetDefault("processing.epoch_length", "24h")
	v.SetDefault("processing.epoch_start", "")

	// Detection defaults
	v.SetDefault("detection.threshold_type", string(threshold.MAD))
	v.SetDefault("detection.threshold", 8.0)
	v.SetDefault("detection.trig_int", "1s")
	v.SetDefault("detection.workers", 0)
	v.SetDefault("detection.precision", "float64")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.textfile", "")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Processing config
	p := c.Processing
	if p.SampleRate < 0 || math.IsNaN(p.SampleRate) || math.IsInf(p.SampleRate, 0) {
		return fmt.Errorf("processing.sample_rate must be a finite non-negative rate")
	}
	if p.LowCut < 0 || p.HighCut < 0 {
		return fmt.Errorf("processing.lowcut and processing.highcut must not be negative")
	}
	if (p.LowCut > 0 || p.HighCut > 0) && p.FilterOrder < 1 {
		return fmt.Errorf("processing.filter_order must be at least 1 when filtering")
	}
	if p.SampleRate > 0 {
		if err := c.filterSpec().Validate(p.SampleRate); err != nil {
			return fmt.Errorf("processing: %w", err)
		}
	}
	if p.EpochLength < 0 {
		return fmt.Errorf("processing.epoch_length must not be negative")
	}
	if _, err := parseEpochStart(p.EpochStart); err != nil {
		return err
	}

	// Validate Detection config
	d := c.Detection
	if math.IsNaN(d.Threshold) || math.IsInf(d.Threshold, 0) {
		return fmt.Errorf("detection.threshold must be finite")
	}
	if d.TrigInt < 0 {
		return fmt.Errorf("detection.trig_int must not be negative")
	}
	if d.Workers < 0 {
		return fmt.Errorf("detection.workers must not be negative")
	}
	if _, err := parsePrecision(d.Precision); err != nil {
		return err
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if c.Metrics.Textfile != "" && !c.Metrics.Enabled {
		return fmt.Errorf("metrics.textfile requires metrics.enabled")
	}

	return nil
}

// DetectorConfig translates the configuration into detector parameters.
// An unrecognised threshold type is passed through; the detector falls
// back to the mean-absolute policy and logs a warning.
func (c *Config) DetectorConfig() (detect.Config, error) {
	start, err := parseEpochStart(c.Processing.EpochStart)
	if err != nil {
		return detect.Config{}, err
	}
	precision, err := parsePrecision(c.Detection.Precision)
	if err != nil {
		return detect.Config{}, err
	}

	policy, err := threshold.ParsePolicy(c.Detection.ThresholdType)
	if err != nil {
		policy = threshold.Policy(c.Detection.ThresholdType)
	}

	return detect.Config{
		Preprocess: preprocess.Options{
			Filter:       c.filterSpec(),
			TargetRate:   c.Processing.SampleRate,
			EpochStart:   start,
			EpochLength:  c.Processing.EpochLength,
			FillGaps:     c.Processing.FillGaps,
			IgnoreLength: c.Processing.IgnoreLength,

			SeisanChannelNames: c.Processing.SeisanChanNames,
		},
		Policy:          policy,
		Threshold:       c.Detection.Threshold,
		TriggerInterval: c.Detection.TrigInt,
		Workers:         c.Detection.Workers,
		Precision:       precision,
	}, nil
}

func (c *Config) filterSpec() filter.Spec {
	return filter.Spec{
		LowCut:    c.Processing.LowCut,
		HighCut:   c.Processing.HighCut,
		Order:     c.Processing.FilterOrder,
		ZeroPhase: true,
	}
}

func parseEpochStart(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("processing.epoch_start %q is neither RFC 3339 nor YYYY-MM-DD", s)
}

func parsePrecision(s string) (sweep.Precision, error) {
	switch strings.ToLower(s) {
	case "float64", "":
		return sweep.Float64, nil
	case "float32":
		return sweep.Float32, nil
	}
	return 0, fmt.Errorf("detection.precision must be one of: float32, float64")
}
