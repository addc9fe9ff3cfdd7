// Package datefilter restricts extracted alerts to a single target date.
package datefilter

import (
	"fmt"
	"strings"
	"time"

	"github.com/law-makers/rasff/internal/engine"
)

// Rule is a day-of-month rendering convention of the results table
type Rule string

const (
	// RuleUnpadded renders 5 March 2025 as "5 MAR 2025". This is what the
	// live table shows and the default.
	RuleUnpadded Rule = "unpadded"
	// RulePadded renders 5 March 2025 as "05 MAR 2025", seen on older
	// renderings of the table.
	RulePadded Rule = "padded"
)

var ruleLayouts = map[Rule]string{
	RuleUnpadded: "2 Jan 2006",
	RulePadded:   "02 Jan 2006",
}

// ParseRule validates a rule name from configuration
func ParseRule(s string) (Rule, error) {
	r := Rule(strings.ToLower(strings.TrimSpace(s)))
	if r == "" {
		return RuleUnpadded, nil
	}
	if _, ok := ruleLayouts[r]; !ok {
		return "", fmt.Errorf("unknown date rule %q (must be unpadded or padded)", s)
	}
	return r, nil
}

// DateSpec is a calendar date plus the rule that renders it like the table does
type DateSpec struct {
	Date time.Time
	Rule Rule
}

// Format renders the date as it appears in the table's Date column:
// day, uppercase three-letter month, four-digit year.
func (d DateSpec) Format() string {
	layout, ok := ruleLayouts[d.Rule]
	if !ok {
		layout = ruleLayouts[RuleUnpadded]
	}
	return strings.ToUpper(d.Date.Format(layout))
}

func (d DateSpec) String() string {
	return d.Format()
}

// inputLayouts are accepted for user-supplied dates, tried in order
var inputLayouts = []string{
	"2006-01-02",
	"2/1/2006",
}

// ParseDate parses a target date given as DD/MM/YYYY (leading zeros optional)
// or YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, engine.NewEngineError(engine.ErrCodeValidation,
		fmt.Sprintf("invalid date %q (expected DD/MM/YYYY)", s), nil)
}
