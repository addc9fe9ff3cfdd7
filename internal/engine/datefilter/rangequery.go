package datefilter

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// RangeSelectors address the date-range picker of the search screen.
// Label fields are Go time layouts rendered against the target date and
// matched as a substring of the calendar cell's aria-label.
type RangeSelectors struct {
	Toggle       string
	PeriodButton string
	Cell         string
	YearLabel    string
	MonthLabel   string
	DayLabel     string
	Submit       string
}

// DefaultRangeSelectors match the Material calendar used by the search screen
func DefaultRangeSelectors() RangeSelectors {
	return RangeSelectors{
		Toggle:       `button[aria-label="Open calendar"]`,
		PeriodButton: `button.mat-calendar-period-button`,
		Cell:         `.mat-calendar-body-cell`,
		YearLabel:    "2006",
		MonthLabel:   "January 2006",
		DayLabel:     "January 2, 2006",
		Submit:       `button[aria-label*="Search"]`,
	}
}

// Clicker is the browser capability RangeQuery needs
type Clicker interface {
	Click(ctx context.Context, selector string, timeout time.Duration) error
}

// Step is one click of the range selection
type Step struct {
	Name     string
	Selector string
}

// RangeQuery makes the remote system filter by setting both ends of its
// date-range picker to the target date.
type RangeQuery struct {
	Selectors RangeSelectors
	Timeout   time.Duration
}

// NewRangeQuery returns a RangeQuery, filling unset selectors with defaults
func NewRangeQuery(sel RangeSelectors, timeout time.Duration) *RangeQuery {
	def := DefaultRangeSelectors()
	orDefault(&sel.Toggle, def.Toggle)
	orDefault(&sel.PeriodButton, def.PeriodButton)
	orDefault(&sel.Cell, def.Cell)
	orDefault(&sel.YearLabel, def.YearLabel)
	orDefault(&sel.MonthLabel, def.MonthLabel)
	orDefault(&sel.DayLabel, def.DayLabel)
	orDefault(&sel.Submit, def.Submit)
	return &RangeQuery{Selectors: sel, Timeout: timeout}
}

func orDefault(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func (q *RangeQuery) cell(date time.Time, layout string) string {
	return fmt.Sprintf("%s[aria-label*=%q]", q.Selectors.Cell, date.Format(layout))
}

// Steps lists the clicks that select date as both start and end, then submit
func (q *RangeQuery) Steps(date time.Time) []Step {
	steps := []Step{{Name: "open calendar", Selector: q.Selectors.Toggle}}
	for _, end := range []string{"start", "end"} {
		steps = append(steps,
			Step{Name: end + " period", Selector: q.Selectors.PeriodButton},
			Step{Name: end + " year", Selector: q.cell(date, q.Selectors.YearLabel)},
			Step{Name: end + " month", Selector: q.cell(date, q.Selectors.MonthLabel)},
			Step{Name: end + " day", Selector: q.cell(date, q.Selectors.DayLabel)},
		)
	}
	return append(steps, Step{Name: "submit", Selector: q.Selectors.Submit})
}

// Apply performs Steps in order. A control that does not show up within the
// timeout aborts the query with the session's NavigationTimeout.
func (q *RangeQuery) Apply(ctx context.Context, c Clicker, date time.Time) error {
	for _, step := range q.Steps(date) {
		log.Debug().Str("step", step.Name).Str("selector", step.Selector).Msg("Date range step")
		if err := c.Click(ctx, step.Selector, q.Timeout); err != nil {
			return fmt.Errorf("date range %s: %w", step.Name, err)
		}
	}
	return nil
}
