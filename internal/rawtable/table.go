// Package rawtable holds the untyped tabular value produced by the raw
// loaders. Cells are strings, or nil where the source used a configured
// missing marker. Downstream stages never mutate a Table; they build new
// values from it.
package rawtable

import "fmt"

// Table is a raw table of named columns.
type Table struct {
	Columns []string
	// Rows are aligned to Columns. A nil cell is an explicit null.
	Rows [][]any

	colIx map[string]int
}

// New builds a Table with an index over the given column names.
func New(columns []string) *Table {
	ix := make(map[string]int, len(columns))
	for i, c := range columns {
		ix[c] = i
	}
	return &Table{Columns: columns, colIx: ix}
}

// Append adds one row. The row must be aligned to Columns.
func (t *Table) Append(row []any) {
	t.Rows = append(t.Rows, row)
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.colIx[name]
	return ok
}

// Cell returns the string value at (row, column). ok is false when the
// column is absent or the cell is null.
func (t *Table) Cell(row int, column string) (string, bool) {
	ci, ok := t.colIx[column]
	if !ok || ci >= len(t.Rows[row]) {
		return "", false
	}
	v := t.Rows[row][ci]
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ParseError reports malformed tabular content. Line is 1-based and 0 when
// the failure is not tied to a specific line (e.g. an unparseable document).
type ParseError struct {
	Format string // "csv" or "html"
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s line %d: %v", e.Format, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
