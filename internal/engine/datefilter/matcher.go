package datefilter

import (
	"strings"
	"time"

	"github.com/law-makers/rasff/internal/engine"
	"github.com/law-makers/rasff/pkg/models"
)

// DefaultColumn is the header of the table's notification date column
const DefaultColumn = "Date"

// Matcher keeps records whose date column equals the formatted target date
type Matcher struct {
	Spec   DateSpec
	Column string
	target string
}

// NewMatcher builds a Matcher for date rendered with rule
func NewMatcher(date time.Time, rule Rule, column string) *Matcher {
	if column == "" {
		column = DefaultColumn
	}
	spec := DateSpec{Date: date, Rule: rule}
	return &Matcher{Spec: spec, Column: column, target: spec.Format()}
}

// Target returns the string a matching Date cell must equal
func (m *Matcher) Target() string {
	return m.target
}

// Match reports whether rec falls on the target date. Comparison is on the
// trimmed, uppercased cell.
func (m *Matcher) Match(rec models.AlertRecord) bool {
	return strings.ToUpper(strings.TrimSpace(rec[m.Column])) == m.target
}

// Filter returns a table with the same columns holding only matching records.
// A table without the date column is an error so that a renamed column is
// never reported as "no alerts".
func (m *Matcher) Filter(t *models.Table) (*models.Table, error) {
	if !hasColumn(t.Columns, m.Column) {
		return nil, engine.NewEngineError(engine.ErrCodeParseError, "date column not found in table", nil).
			WithDetail("column", m.Column).
			WithDetail("columns", t.Columns)
	}

	out := &models.Table{Columns: t.Columns, Records: []models.AlertRecord{}}
	for _, rec := range t.Records {
		if m.Match(rec) {
			out.Records = append(out.Records, rec)
		}
	}
	return out, nil
}

func hasColumn(cols []string, name string) bool {
	for _, c := range cols {
		if c == name {
			return true
		}
	}
	return false
}
