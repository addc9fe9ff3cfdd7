package pipeline

import (
	"time"

	"github.com/law-makers/rasff/internal/engine/browser"
	"github.com/law-makers/rasff/internal/engine/datefilter"
	"github.com/law-makers/rasff/pkg/models"
)

// Page controls of the RASFF Window search screen
const (
	TableWaitSelector = "table.eui-table"
	TableSelector     = "table.eui-table.eui-table--hoverable.eui-table--responsive"
	PageSizeSelector  = "select.page-size__select.eui-select"
)

// Upper bounds for the table to settle, matching the fixed sleeps the page
// was historically given.
const (
	DefaultLoadSettle   = 2 * time.Second
	DefaultChangeSettle = 3 * time.Second
	DefaultPageSize     = 100
)

// Options configures a Pipeline. The zero value of every field except
// Endpoint and Output selects the default.
type Options struct {
	Browser  browser.Config
	Endpoint string

	// PageSize is assigned to the page-size control before reading the
	// table. Negative disables the step.
	PageSize int

	LoadSettle   time.Duration
	ChangeSettle time.Duration
	PollInterval time.Duration

	Strategy   models.Strategy
	DateRule   datefilter.Rule
	DateColumn string
	Range      datefilter.RangeSelectors

	Policy models.Policy
	Output string

	// SnapshotSelectors locate the results table, tried in order
	SnapshotSelectors []string
}

func (o Options) withDefaults() Options {
	if o.PageSize == 0 {
		o.PageSize = DefaultPageSize
	}
	if o.LoadSettle <= 0 {
		o.LoadSettle = DefaultLoadSettle
	}
	if o.ChangeSettle <= 0 {
		o.ChangeSettle = DefaultChangeSettle
	}
	if o.PollInterval <= 0 {
		o.PollInterval = browser.DefaultPollInterval
	}
	if o.Strategy == "" {
		o.Strategy = models.StrategyMatch
	}
	if o.DateRule == "" {
		o.DateRule = datefilter.RuleUnpadded
	}
	if o.DateColumn == "" {
		o.DateColumn = datefilter.DefaultColumn
	}
	if o.Policy == "" {
		o.Policy = models.PolicyMerge
	}
	if len(o.SnapshotSelectors) == 0 {
		o.SnapshotSelectors = []string{TableSelector, TableWaitSelector}
	}
	return o
}
