// Package config defines the report pipeline configuration.
//
// A Report is loaded from a JSON file (or assembled by the caller) and passed
// explicitly into the loader; nothing in the pipeline reads ambient defaults,
// so tests can substitute fixture URLs and marker sets deterministically.
package config

import (
	"fmt"
	"time"
)

// Report is the top-level pipeline configuration.
type Report struct {
	// Job is the logical job name, used for metrics tags and log lines.
	Job string `json:"job"`

	Source Source `json:"source"`
	Parser Parser `json:"parser"`

	// MissingMarkers are the literal cell values treated as null by the
	// parsers. When nil, DefaultMissingMarkers() applies. An explicit empty
	// slice disables marker substitution entirely.
	MissingMarkers []string `json:"missing_markers"`
}

// Source describes where the raw extract comes from.
type Source struct {
	// URL accepts http(s) URLs, file:// URLs, or bare filesystem paths.
	URL string `json:"url"`

	// TimeoutSec bounds the whole fetch (connect + read). <= 0 means
	// DefaultFetchTimeout.
	TimeoutSec int `json:"timeout_sec"`
}

// Parser selects and tunes the raw-table parser.
type Parser struct {
	// Kind is "csv", "html", or "" for sniffing from content.
	Kind    string  `json:"kind"`
	Options Options `json:"options"`
}

// DefaultFetchTimeout bounds a source fetch when the config does not.
const DefaultFetchTimeout = 60 * time.Second

// DefaultMissingMarkers returns the marker set used when the config leaves
// MissingMarkers nil. These are the literals the source extract uses for
// "no value".
func DefaultMissingMarkers() []string {
	return []string{"", " ", "(null)", "UNKNOWN"}
}

// Markers resolves the effective missing-marker set.
func (r Report) Markers() []string {
	if r.MissingMarkers == nil {
		return DefaultMissingMarkers()
	}
	return r.MissingMarkers
}

// FetchTimeout resolves the effective fetch timeout.
func (r Report) FetchTimeout() time.Duration {
	if r.Source.TimeoutSec <= 0 {
		return DefaultFetchTimeout
	}
	return time.Duration(r.Source.TimeoutSec) * time.Second
}

// Validate reports configuration problems that would make a run impossible.
func (r Report) Validate() error {
	if r.Source.URL == "" {
		return fmt.Errorf("config: source.url is required")
	}
	switch r.Parser.Kind {
	case "", "csv", "html":
	default:
		return fmt.Errorf("config: unknown parser kind %q", r.Parser.Kind)
	}
	return nil
}
