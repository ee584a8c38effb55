package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"shootings/internal/config"
	"shootings/internal/rawtable"
	"shootings/internal/source"
)

// fixtureTable builds a small raw extract with two precincts, distinct
// murder counts (so the regression has rank), and varied boroughs, races,
// and hours, so every chart has something to draw.
func fixtureTable() *rawtable.Table {
	columns := []string{
		"occur_date", "occur_time", "boro", "precinct", "jurisdiction_code",
		"statistical_murder_flag", "vic_race", "latitude", "longitude",
	}
	tbl := rawtable.New(columns)
	add := func(date, tm, boro, precinct, flag, race string) {
		tbl.Append([]any{date, tm, boro, precinct, "0", flag, race, "40.7", "-73.9"})
	}
	add("01/05/2021", "23:15:00", "QUEENS", "103", "true", "BLACK")
	add("01/06/2021", "01:10:00", "QUEENS", "103", "false", "WHITE")
	add("01/07/2021", "13:45:00", "QUEENS", "103", "false", "BLACK")
	add("02/01/2021", "22:05:00", "BRONX", "40", "true", "WHITE HISPANIC")
	add("02/02/2021", "22:55:00", "BRONX", "40", "true", "BLACK")
	return tbl
}

// TestRunSuccess verifies the end-to-end command against a fixture loader:
// exit code 0, all four artifacts written, model summary echoed to stdout.
func TestRunSuccess(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "report")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-out", outDir, "-source", "fixture://ignored"}, deps{
		Stdout: &stdout,
		Stderr: &stderr,
		Load: func(ctx context.Context, cfg config.Report) (*rawtable.Table, error) {
			return fixtureTable(), nil
		},
	})
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr.String())
	}

	for _, name := range []string{
		"incidents_by_borough.png",
		"incidents_by_hour.png",
		"precinct_trend.png",
		"model_summary.txt",
	} {
		info, err := os.Stat(filepath.Join(outDir, name))
		if err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("artifact %s is empty", name)
		}
	}

	if !bytes.Contains(stdout.Bytes(), []byte("slope")) {
		t.Errorf("stdout missing model summary:\n%s", stdout.String())
	}
}

// TestRunLoadFailure verifies the failure contract: a load error exits 1 and
// names the failing stage on stderr.
func TestRunLoadFailure(t *testing.T) {
	var stderr bytes.Buffer

	code := run(context.Background(), []string{"-out", t.TempDir()}, deps{
		Stderr: &stderr,
		Load: func(ctx context.Context, cfg config.Report) (*rawtable.Table, error) {
			return nil, &source.IOError{URL: cfg.Source.URL, Err: fmt.Errorf("connection refused")}
		},
	})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !bytes.Contains(stderr.Bytes(), []byte("load (io)")) {
		t.Errorf("stderr should name the failing stage:\n%s", stderr.String())
	}
}

// TestRunConfigErrors verifies exit code 2 for configuration problems.
func TestRunConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-nope"}},
		{"missing config file", []string{"-config", "does/not/exist.json"}},
		{"unknown metrics backend", []string{"-metrics-backend", "statsd"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			code := run(context.Background(), tt.args, deps{
				Stderr: &stderr,
				Load: func(ctx context.Context, cfg config.Report) (*rawtable.Table, error) {
					return fixtureTable(), nil
				},
			})
			if code != 2 {
				t.Fatalf("exit code = %d, want 2; stderr:\n%s", code, stderr.String())
			}
		})
	}
}

// TestRunConfigFile verifies that an explicit JSON config drives the run,
// with the source URL reaching the loader untouched.
func TestRunConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "report.json")
	cfgJSON := `{"job":"fixture-job","source":{"url":"file:///tmp/extract.csv"},"missing_markers":["NA"]}`
	if err := os.WriteFile(cfgPath, []byte(cfgJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	var gotURL string
	var gotMarkers []string
	code := run(context.Background(), []string{"-config", cfgPath, "-out", t.TempDir()}, deps{
		Load: func(ctx context.Context, cfg config.Report) (*rawtable.Table, error) {
			gotURL = cfg.Source.URL
			gotMarkers = cfg.Markers()
			return fixtureTable(), nil
		},
	})
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if gotURL != "file:///tmp/extract.csv" {
		t.Errorf("source url = %q", gotURL)
	}
	if len(gotMarkers) != 1 || gotMarkers[0] != "NA" {
		t.Errorf("markers = %v, want [NA]", gotMarkers)
	}
}
