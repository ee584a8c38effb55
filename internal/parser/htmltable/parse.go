// Package htmltable parses an HTML table export into a rawtable.Table.
//
// Some open-data portals serve the same extract as an HTML page with a
// single <table>; this parser accepts that shape with the same raw-table
// contract as the CSV path: normalized header keys, marker cells as nulls.
package htmltable

import (
	"bytes"
	"fmt"
	"strings"

	"shootings/internal/config"
	"shootings/internal/rawtable"

	"github.com/PuerkitoBio/goquery"
)

// Parse extracts the first <table> in the document.
//
// Header cells come from the first row's <th> elements (or <td> when the
// table carries no <th>). Rows with no cells are skipped rather than failing
// the whole document.
func Parse(data []byte, markers []string) (*rawtable.Table, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, &rawtable.ParseError{Format: "html", Err: err}
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, &rawtable.ParseError{Format: "html", Err: fmt.Errorf("no <table> element")}
	}

	markerSet := make(map[string]bool, len(markers))
	for _, m := range markers {
		markerSet[m] = true
	}

	rows := table.Find("tr")
	if rows.Length() == 0 {
		return nil, &rawtable.ParseError{Format: "html", Err: fmt.Errorf("table has no rows")}
	}

	var columns []string
	head := rows.First()
	headCells := head.Find("th")
	if headCells.Length() == 0 {
		headCells = head.Find("td")
	}
	headCells.Each(func(_ int, cell *goquery.Selection) {
		columns = append(columns, config.NormalizeHeader(cell.Text()))
	})
	if len(columns) == 0 {
		return nil, &rawtable.ParseError{Format: "html", Err: fmt.Errorf("table has no header cells")}
	}

	tbl := rawtable.New(columns)
	rows.Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return
		}
		row := make([]any, len(columns))
		cells.Each(func(j int, cell *goquery.Selection) {
			if j >= len(columns) {
				return
			}
			v := strings.TrimSpace(cell.Text())
			if markerSet[v] {
				return
			}
			row[j] = v
		})
		tbl.Append(row)
	})

	return tbl, nil
}
