// Package table turns a snapshot of the results table into header-keyed records.
package table

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/law-makers/rasff/internal/engine"
	"github.com/law-makers/rasff/pkg/models"
)

// RowWarning describes a body row that was dropped because its cell count
// does not match the header row.
type RowWarning struct {
	Row   int `json:"row"`
	Cells int `json:"cells"`
	Want  int `json:"want"`
}

func (w RowWarning) String() string {
	return fmt.Sprintf("row %d has %d cells, want %d", w.Row, w.Cells, w.Want)
}

// Result is a parsed table plus the rows that could not be mapped
type Result struct {
	models.Table
	Skipped []RowWarning
}

// Parse reads headers from "thead th" and records from "tbody tr" / "td".
//
// Rows with a different number of cells than there are headers are skipped
// and reported, never truncated or padded.
func Parse(html string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeParseError, "invalid table markup", err)
	}
	return ParseSelection(doc.Selection)
}

// ParseSelection parses a table already loaded into goquery
func ParseSelection(sel *goquery.Selection) (*Result, error) {
	var headers []string
	sel.Find("thead th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, CellText(th))
	})
	if len(headers) == 0 {
		return nil, engine.NewEngineError(engine.ErrCodeParseError, "table has no header cells", nil)
	}
	headers = uniqueHeaders(headers)

	res := &Result{Table: models.Table{Columns: headers, Records: []models.AlertRecord{}}}
	sel.Find("tbody tr").Each(func(i int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() != len(headers) {
			res.Skipped = append(res.Skipped, RowWarning{Row: i, Cells: cells.Length(), Want: len(headers)})
			return
		}
		rec := make(models.AlertRecord, len(headers))
		cells.Each(func(j int, td *goquery.Selection) {
			rec[headers[j]] = CellText(td)
		})
		res.Records = append(res.Records, rec)
	})

	return res, nil
}

// uniqueHeaders names blank headers after their position and suffixes repeated
// ones, so every record keeps one key per column.
func uniqueHeaders(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]bool, len(headers))
	next := make(map[string]int, len(headers))
	for i, h := range headers {
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}
		// A generated name may collide with a real header further left
		name := h
		for n := max(next[h], 2); seen[name]; n++ {
			name = fmt.Sprintf("%s (%d)", h, n)
			next[h] = n + 1
		}
		seen[name] = true
		out[i] = name
	}
	return out
}
