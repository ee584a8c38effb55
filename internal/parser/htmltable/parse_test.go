package htmltable

import (
	"errors"
	"testing"

	"shootings/internal/rawtable"
)

// TestParseTable verifies the basic extraction contract: th headers become
// normalized column keys, td cells become values, marker cells become nulls.
func TestParseTable(t *testing.T) {
	t.Parallel()

	in := `<html><body><table>
		<tr><th>OCCUR_DATE</th><th>Vic Race</th></tr>
		<tr><td>01/05/2021</td><td>(null)</td></tr>
		<tr><td>02/06/2021</td><td>BLACK</td></tr>
	</table></body></html>`

	tbl, err := Parse([]byte(in), []string{"", "(null)"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got, want := len(tbl.Columns), 2; got != want {
		t.Fatalf("columns = %v", tbl.Columns)
	}
	if tbl.Columns[0] != "occur_date" || tbl.Columns[1] != "vic_race" {
		t.Fatalf("columns = %v", tbl.Columns)
	}
	if tbl.Len() != 2 {
		t.Fatalf("rows = %d, want 2", tbl.Len())
	}
	if _, ok := tbl.Cell(0, "vic_race"); ok {
		t.Error("marker cell should be null")
	}
	if v, ok := tbl.Cell(1, "vic_race"); !ok || v != "BLACK" {
		t.Errorf("cell = %q,%v", v, ok)
	}
}

// TestParseNoTable verifies that a page without a <table> is a ParseError,
// not an empty table: the loader must never hand downstream a silently
// empty result for structurally wrong content.
func TestParseNoTable(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("<html><body><p>nothing here</p></body></html>"), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var pe *rawtable.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %T, want *rawtable.ParseError", err)
	}
	if pe.Format != "html" {
		t.Errorf("format = %q, want html", pe.Format)
	}
}

// TestParseHeaderlessTable verifies the td-header fallback for tables that
// carry no th row.
func TestParseHeaderlessTable(t *testing.T) {
	t.Parallel()

	in := `<table><tr><td>A</td><td>B</td></tr><tr><td>1</td><td>2</td></tr></table>`
	tbl, err := Parse([]byte(in), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tbl.Columns[0] != "a" || tbl.Columns[1] != "b" {
		t.Fatalf("columns = %v", tbl.Columns)
	}
	if tbl.Len() != 1 {
		t.Fatalf("rows = %d, want 1", tbl.Len())
	}
}
