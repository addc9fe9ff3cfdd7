package models

import "time"

// AlertRecord is one row of the RASFF results table keyed by column header.
type AlertRecord map[string]string

// Table is an ordered set of records sharing one column schema.
// It describes both a single scrape and a persisted archive.
type Table struct {
	Columns []string      `json:"columns"`
	Records []AlertRecord `json:"records"`
}

// Len returns the number of records in the table
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Row returns the record's cells in column order. Missing keys yield "".
func (t *Table) Row(i int) []string {
	rec := t.Records[i]
	row := make([]string, len(t.Columns))
	for j, col := range t.Columns {
		row[j] = rec[col]
	}
	return row
}

// Strategy selects how the target date is applied to the remote table
type Strategy string

const (
	// StrategyMatch keeps rows whose Date cell equals the formatted target date.
	StrategyMatch Strategy = "match"
	// StrategyRange makes the remote site filter by driving its date-range picker.
	StrategyRange Strategy = "range"
)

// Policy selects where extracted alerts are persisted
type Policy string

const (
	// PolicyMerge merges every run into the same archive file.
	PolicyMerge Policy = "merge"
	// PolicyDated writes each run into a file stamped with the target date.
	PolicyDated Policy = "dated"
)

// Outcome describes a successful pipeline run
type Outcome string

const (
	OutcomeSaved    Outcome = "saved"
	OutcomeNoAlerts Outcome = "no_alerts"
)

// RunSummary is the user-facing result of one extraction
type RunSummary struct {
	RunID      string        `json:"run_id"`
	Date       string        `json:"date"`
	Strategy   Strategy      `json:"strategy"`
	Outcome    Outcome       `json:"outcome"`
	Fetched    int           `json:"fetched_rows"`
	Matched    int           `json:"matched_rows"`
	Skipped    int           `json:"skipped_rows"`
	Path       string        `json:"path,omitempty"`
	Added      int           `json:"added_rows"`
	Duplicates int           `json:"duplicate_rows"`
	Total      int           `json:"archive_rows"`
	Backfilled []string      `json:"backfilled_columns,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	Elapsed    time.Duration `json:"elapsed_ns"`

	// Alerts holds the matched records; it is not part of the JSON summary.
	Alerts *Table `json:"-"`
}
