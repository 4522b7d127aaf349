// Command mfdetect runs matched-filter detection over waveforms described
// by a JSON manifest and prints one row per detection.
//
// Usage:
//
//	mfdetect [flags] manifest.json
//
// The manifest lists templates (name plus per-channel segments) and the
// continuous segments to scan; "-" reads it from standard input. Processing
// and detection parameters come from the configuration file and MFDETECT_*
// environment variables.
//
// Examples:
//
//	mfdetect -config mfdetect.yaml day.json
//	MFDETECT_DETECTION_THRESHOLD=10 mfdetect day.json
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/cwbudde/algo-mfdetect/config"
	"github.com/cwbudde/algo-mfdetect/detect"
	"github.com/cwbudde/algo-mfdetect/internal/logging"
	"github.com/cwbudde/algo-mfdetect/internal/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mfdetect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "configuration file (YAML, TOML or JSON)")
	rawTemplates := fs.Bool("raw-templates", false, "use templates as given instead of preprocessing them like the continuous data")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: mfdetect [flags] manifest.json\n\n")
		fmt.Fprintf(stderr, "Runs matched-filter detection and prints one row per detection.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	m, err := openManifest(fs.Arg(0), stdin)
	if err != nil {
		log.Error("Could not read manifest", slog.Any("Error", err))
		return 1
	}

	res, collector, err := detectAll(ctx, cfg, m, !*rawTemplates, log)
	if err != nil {
		log.Error("Detection failed", slog.Any("Error", err))
		return 1
	}

	printDetections(stdout, res.Detections)
	for _, ce := range res.Excluded {
		log.Warn("Channel excluded", slog.String("channel", ce.ID.String()), slog.Any("Error", ce.Err))
	}
	log.Info("Run finished",
		slog.String("run", res.RunID.String()),
		slog.Int("detections", len(res.Detections)),
		slog.Int("excluded", len(res.Excluded)))

	if collector != nil && cfg.Metrics.Textfile != "" {
		if err := collector.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Error("Could not write metrics", slog.Any("Error", err))
			return 1
		}
	}
	return 0
}

func openManifest(path string, stdin io.Reader) (manifest, error) {
	if path == "-" {
		return readManifest(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return manifest{}, err
	}
	defer f.Close()
	return readManifest(f)
}

func detectAll(ctx context.Context, cfg *config.Config, m manifest, prepareTemplates bool, log *slog.Logger) (detect.Result, *metrics.Collector, error) {
	dc, err := cfg.DetectorConfig()
	if err != nil {
		return detect.Result{}, nil, err
	}

	opts := []detect.Option{detect.WithLogger(log)}
	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector()
		opts = append(opts, detect.WithObserver(collector))
	}
	det := detect.New(dc, opts...)

	templates, err := m.templates()
	if err != nil {
		return detect.Result{}, nil, err
	}
	if prepareTemplates {
		for i, t := range templates {
			if templates[i], err = det.PrepareTemplate(t); err != nil {
				return detect.Result{}, nil, err
			}
		}
	}

	raw, err := m.continuous()
	if err != nil {
		return detect.Result{}, nil, err
	}

	res, err := det.Run(ctx, templates, raw)
	return res, collector, err
}

func printDetections(w io.Writer, ds []detect.Detection) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTEMPLATE\tTIME\tINDEX\tVALUE\tTHRESHOLD\tCHANNELS\tKIND")
	for _, d := range ds {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.4f\t%.4f\t%d\t%s\n",
			d.ID(), d.Template(), d.Time().UTC().Format("2006-01-02T15:04:05.000000Z"),
			d.Index(), d.Value(), d.Threshold(), d.Channels(), d.Kind())
	}
	tw.Flush()
}
