package config

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

// TestOptionsAccessors verifies the typed accessors against JSON-decoded
// values, the shape options actually arrive in from a config file.
func TestOptionsAccessors(t *testing.T) {
	t.Parallel()

	var opt Options
	raw := `{"has_header": false, "comma": ";", "fields": 3, "header_map": {"A": "a_col"}, "markers": ["", "x"]}`
	if err := json.Unmarshal([]byte(raw), &opt); err != nil {
		t.Fatal(err)
	}

	if opt.Bool("has_header", true) {
		t.Error("has_header should be false")
	}
	if opt.Bool("absent", true) != true {
		t.Error("absent bool should fall back to default")
	}
	if got := opt.Rune("comma", ','); got != ';' {
		t.Errorf("comma = %q, want ;", got)
	}
	if got := opt.Rune("absent", ','); got != ',' {
		t.Errorf("absent rune = %q, want default", got)
	}
	if got := opt.Int("fields", 0); got != 3 {
		t.Errorf("fields = %d, want 3", got)
	}
	if got := opt.StringMap("header_map"); got["A"] != "a_col" {
		t.Errorf("header_map = %v", got)
	}
	if got := opt.StringSlice("markers"); !reflect.DeepEqual(got, []string{"", "x"}) {
		t.Errorf("markers = %v", got)
	}
}

// TestReportDefaults verifies marker and timeout resolution: nil markers
// mean the documented default set, an explicit empty slice disables
// substitution, and non-positive timeouts fall back.
func TestReportDefaults(t *testing.T) {
	t.Parallel()

	var r Report
	if got := r.Markers(); !reflect.DeepEqual(got, []string{"", " ", "(null)", "UNKNOWN"}) {
		t.Errorf("default markers = %v", got)
	}

	r.MissingMarkers = []string{}
	if got := r.Markers(); len(got) != 0 {
		t.Errorf("explicit empty markers = %v, want none", got)
	}

	if got := r.FetchTimeout(); got != DefaultFetchTimeout {
		t.Errorf("timeout = %v, want default", got)
	}
	r.Source.TimeoutSec = 5
	if got := r.FetchTimeout(); got != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", got)
	}
}

// TestValidate verifies the required-field checks callers rely on before
// starting a run.
func TestValidate(t *testing.T) {
	t.Parallel()

	if err := (Report{}).Validate(); err == nil {
		t.Error("missing source.url should fail validation")
	}
	ok := Report{Source: Source{URL: "file://x.csv"}}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
	bad := ok
	bad.Parser.Kind = "xml"
	if err := bad.Validate(); err == nil {
		t.Error("unknown parser kind should fail validation")
	}
}
