// Package loader is the raw-loading facade: fetch the configured source,
// sniff the content format when the config does not pin one, and dispatch to
// the matching parser.
package loader

import (
	"bytes"
	"context"
	"net/http"

	"shootings/internal/config"
	"shootings/internal/parser/csv"
	"shootings/internal/parser/htmltable"
	"shootings/internal/rawtable"
	"shootings/internal/source"
)

// Loader loads the raw table described by a config.Report.
type Loader struct {
	// HTTPClient overrides the fetch client; nil uses the report timeout.
	HTTPClient *http.Client
}

// Load fetches and parses the configured source.
//
// Errors are *source.IOError for unreachable sources and
// *rawtable.ParseError for malformed content; nothing partial is returned
// alongside an error.
func (l *Loader) Load(ctx context.Context, cfg config.Report) (*rawtable.Table, error) {
	f := &source.Fetcher{Client: l.HTTPClient, Timeout: cfg.FetchTimeout()}

	data, err := f.Fetch(ctx, cfg.Source.URL)
	if err != nil {
		return nil, err
	}

	kind := cfg.Parser.Kind
	if kind == "" {
		kind = sniffFormat(data)
	}

	switch kind {
	case "html":
		return htmltable.Parse(data, cfg.Markers())
	default:
		return csv.Parse(data, cfg.Parser.Options, cfg.Markers())
	}
}

// Load is the package-level convenience used by callers without a custom
// client.
func Load(ctx context.Context, cfg config.Report) (*rawtable.Table, error) {
	return (&Loader{}).Load(ctx, cfg)
}

// sniffFormat guesses "csv" or "html" from the first non-space bytes.
// CSV is the fallback: anything not starting with markup is handed to the
// CSV parser, which produces the authoritative ParseError if it is not
// tabular either.
func sniffFormat(data []byte) string {
	head := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(head) > 512 {
		head = head[:512]
	}
	lower := bytes.ToLower(head)
	if bytes.HasPrefix(lower, []byte("<!doctype")) || bytes.HasPrefix(lower, []byte("<html")) || bytes.HasPrefix(lower, []byte("<table")) {
		return "html"
	}
	return "csv"
}
