// Package csv parses a CSV extract into a rawtable.Table.
//
// Header cells are normalized (BOM stripped, edge space trimmed, lower_snake
// keys, optional header_map overrides) and data cells matching the configured
// missing markers become explicit nulls. The whole input is materialized;
// the pipeline is a single-shot batch, not a stream.
package csv

import (
	"bytes"
	stdcsv "encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"shootings/internal/config"
	"shootings/internal/rawtable"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Parse reads the full CSV content into a raw table.
//
// Recognized options:
//
//	has_header        bool   (default true)
//	comma             string (first rune, default ",")
//	trim_space        bool   (default true)
//	lazy_quotes       bool   (default false)
//	header_map        map[string]string, raw header -> column key
//	charset           string ("utf-8" or "windows-1252"; "" sniffs)
func Parse(data []byte, opt config.Options, markers []string) (*rawtable.Table, error) {
	data, err := decodeCharset(data, opt.String("charset", ""))
	if err != nil {
		return nil, &rawtable.ParseError{Format: "csv", Err: err}
	}

	cr := stdcsv.NewReader(bytes.NewReader(data))
	cr.Comma = opt.Rune("comma", ',')
	cr.LazyQuotes = opt.Bool("lazy_quotes", false)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	trim := opt.Bool("trim_space", true)
	hm := opt.StringMap("header_map")

	markerSet := make(map[string]bool, len(markers))
	for _, m := range markers {
		markerSet[m] = true
	}

	var line int
	readRec := func() ([]string, error) {
		line++
		return cr.Read()
	}

	var columns []string
	if opt.Bool("has_header", true) {
		hdr, err := readRec()
		if err != nil {
			return nil, &rawtable.ParseError{Format: "csv", Line: line, Err: fmt.Errorf("read header: %w", err)}
		}
		columns = make([]string, len(hdr))
		for i, h := range hdr {
			if i == 0 {
				h = strings.TrimPrefix(h, "\ufeff")
			}
			if mapped, ok := hm[strings.TrimSpace(h)]; ok {
				columns[i] = mapped
			} else {
				columns[i] = config.NormalizeHeader(h)
			}
		}
	}

	tbl := rawtable.New(columns)
	for {
		rec, err := readRec()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &rawtable.ParseError{Format: "csv", Line: line, Err: err}
		}

		if columns == nil {
			// Headerless input: synthesize positional column keys from the
			// first record.
			columns = make([]string, len(rec))
			for i := range rec {
				columns[i] = fmt.Sprintf("col_%d", i+1)
			}
			tbl = rawtable.New(columns)
		}

		row := make([]any, len(columns))
		for i := range columns {
			if i >= len(rec) {
				continue
			}
			v := rec[i]
			if trim {
				v = strings.TrimSpace(v)
			}
			if markerSet[v] {
				continue
			}
			row[i] = v
		}
		tbl.Append(row)
	}

	if tbl.Len() == 0 && len(tbl.Columns) == 0 {
		return nil, &rawtable.ParseError{Format: "csv", Err: fmt.Errorf("no tabular content")}
	}
	return tbl, nil
}

// decodeCharset converts the input to UTF-8. With no explicit charset, valid
// UTF-8 passes through and anything else is assumed to be a windows-1252
// export, which some portal downloads still produce.
func decodeCharset(data []byte, charset string) ([]byte, error) {
	switch strings.ToLower(charset) {
	case "", "auto":
		if utf8.Valid(data) {
			return data, nil
		}
		return fromWindows1252(data)
	case "utf-8", "utf8":
		return data, nil
	case "windows-1252", "cp1252", "latin1", "iso-8859-1":
		return fromWindows1252(data)
	default:
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
}

func fromWindows1252(data []byte) ([]byte, error) {
	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("decode windows-1252: %w", err)
	}
	return out, nil
}
