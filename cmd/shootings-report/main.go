// Command shootings-report runs the full analysis over the NYPD
// shooting-incident extract: fetch, normalize, filter, aggregate, fit, and
// render the report artifacts (three charts and a model summary) into an
// output directory.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shootings/internal/aggregate"
	"shootings/internal/config"
	"shootings/internal/loader"
	"shootings/internal/metrics"
	"shootings/internal/metrics/datadog"
	"shootings/internal/rawtable"
	"shootings/internal/regress"
	"shootings/internal/schema"
	"shootings/internal/source"
)

// defaultSourceURL is the public extract; no authentication required.
const defaultSourceURL = "https://data.cityofnewyork.us/api/views/833y-fsy8/rows.csv?accessType=DOWNLOAD"

// backendCloser is the minimal interface the command needs from a metrics
// backend.
type backendCloser interface {
	metrics.Backend
	Close() error
}

// nopCloser adapts metrics.Nop to backendCloser.
type nopCloser struct{ metrics.Nop }

func (nopCloser) Close() error { return nil }

// deps are external seams for testability: tests inject a fake loader and
// capture output without network access.
type deps struct {
	Stdout io.Writer
	Stderr io.Writer

	Load           func(ctx context.Context, cfg config.Report) (*rawtable.Table, error)
	BackendFactory func(ctx context.Context, jobName string, tags []string) (backendCloser, error)
	Now            func() time.Time
}

func main() {
	code := run(context.Background(), os.Args[1:], deps{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Load:   loader.Load,
		BackendFactory: func(ctx context.Context, jobName string, tags []string) (backendCloser, error) {
			return datadog.NewBackend(ctx, datadog.Options{JobName: jobName, Tags: tags})
		},
		Now: time.Now,
	})
	os.Exit(code)
}

// run executes the report command.
//
// Exit codes:
//   - 0: success.
//   - 1: pipeline failure (the failing stage and condition go to stderr).
//   - 2: configuration/initialization error.
func run(ctx context.Context, args []string, d deps) int {
	if d.Stdout == nil {
		d.Stdout = io.Discard
	}
	if d.Stderr == nil {
		d.Stderr = io.Discard
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Load == nil {
		d.Load = loader.Load
	}

	fs := flag.NewFlagSet("shootings-report", flag.ContinueOnError)
	fs.SetOutput(d.Stderr)

	var (
		cfgPath     = fs.String("config", "", "report config JSON path (optional)")
		sourceURL   = fs.String("source", "", "override source URL (http(s), file://, or path)")
		outDir      = fs.String("out", "out", "output directory for charts and model summary")
		timeoutSec  = fs.Int("timeout", 0, "fetch timeout in seconds (overrides config)")
		backendName = fs.String("metrics-backend", "none", "metrics backend: none or datadog")
		ddTagsCSV   = fs.String("dd-tags", "", "extra Datadog tags, comma separated (k:v,k:v)")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := config.Report{Job: "shootings-report"}
	if *cfgPath != "" {
		f, err := os.Open(*cfgPath)
		if err != nil {
			fmt.Fprintf(d.Stderr, "open config: %v\n", err)
			return 2
		}
		err = json.NewDecoder(f).Decode(&cfg)
		f.Close()
		if err != nil {
			fmt.Fprintf(d.Stderr, "decode config: %v\n", err)
			return 2
		}
	}
	if *sourceURL != "" {
		cfg.Source.URL = *sourceURL
	}
	if cfg.Source.URL == "" {
		cfg.Source.URL = defaultSourceURL
	}
	if *timeoutSec > 0 {
		cfg.Source.TimeoutSec = *timeoutSec
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(d.Stderr, "%v\n", err)
		return 2
	}

	var backend backendCloser = nopCloser{}
	if *backendName == "datadog" {
		if d.BackendFactory == nil {
			fmt.Fprintf(d.Stderr, "metrics backend %q unavailable\n", *backendName)
			return 2
		}
		b, err := d.BackendFactory(ctx, cfg.Job, splitTags(*ddTagsCSV))
		if err != nil {
			fmt.Fprintf(d.Stderr, "init metrics backend: %v\n", err)
			return 2
		}
		backend = b
	} else if *backendName != "none" && *backendName != "" {
		fmt.Fprintf(d.Stderr, "unknown metrics backend %q\n", *backendName)
		return 2
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Printf("metrics close: %v", err)
		}
	}()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(d.Stderr, "create output dir: %v\n", err)
		return 2
	}

	if err := runPipeline(ctx, cfg, *outDir, backend, d); err != nil {
		fmt.Fprintf(d.Stderr, "%s: %v\n", stageOf(err), err)
		return 1
	}
	return 0
}

// runPipeline executes the stages in order; each stage consumes the previous
// stage's output and produces a fresh value.
func runPipeline(ctx context.Context, cfg config.Report, outDir string, backend metrics.Backend, d deps) error {
	timed := func(stage string, start time.Time) {
		backend.ObserveDuration(metrics.StageDuration, d.Now().Sub(start), metrics.Labels{"stage": stage})
	}

	start := d.Now()
	raw, err := d.Load(ctx, cfg)
	if err != nil {
		return err
	}
	timed("load", start)
	backend.IncCounter(metrics.RowsLoaded, float64(raw.Len()), nil)
	log.Printf("loaded %d raw rows from %s", raw.Len(), cfg.Source.URL)

	start = d.Now()
	n := &schema.Normalizer{}
	recs, stats := n.Normalize(raw)
	timed("normalize", start)
	backend.IncCounter(metrics.NullOccurredAt, float64(stats.NullOccurredAt), nil)
	backend.IncCounter(metrics.BadFieldTokens, float64(stats.BadAgeTokens), metrics.Labels{"field": "age_group"})
	backend.IncCounter(metrics.BadFieldTokens, float64(stats.BadBoolTokens), metrics.Labels{"field": "murder_flag"})
	if stats.NullOccurredAt > 0 {
		log.Printf("normalize: %d rows have no parseable occurrence time", stats.NullOccurredAt)
	}

	filtered := schema.FilterComplete(recs)
	backend.IncCounter(metrics.RowsFiltered, float64(len(recs)-len(filtered)), nil)
	log.Printf("filter: kept %d of %d records", len(filtered), len(recs))

	start = d.Now()
	byBorough, races := aggregate.ByBoroughVictimRace(filtered)
	byHour := aggregate.ByHour(filtered)
	byPrecinct := aggregate.ByPrecinct(filtered)
	timed("aggregate", start)

	start = d.Now()
	fittedRows, model, err := regress.FitPrecincts(byPrecinct)
	if err != nil {
		return err
	}
	timed("fit", start)

	if err := renderCharts(outDir, byBorough, races, byHour, fittedRows); err != nil {
		return fmt.Errorf("render charts: %w", err)
	}

	summaryPath := filepath.Join(outDir, "model_summary.txt")
	if err := os.WriteFile(summaryPath, []byte(model.Summary()), 0o644); err != nil {
		return fmt.Errorf("write model summary: %w", err)
	}
	fmt.Fprint(d.Stdout, model.Summary())
	log.Printf("report written to %s", outDir)
	return nil
}

// stageOf names the failing stage from the error's type for the user-facing
// failure line.
func stageOf(err error) string {
	var ioErr *source.IOError
	var parseErr *rawtable.ParseError
	var modelErr *regress.ModelError
	switch {
	case errors.As(err, &ioErr):
		return "load (io)"
	case errors.As(err, &parseErr):
		return "load (parse)"
	case errors.As(err, &modelErr):
		return "fit"
	default:
		return "report"
	}
}

func splitTags(csv string) []string {
	var out []string
	for _, t := range strings.Split(csv, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
