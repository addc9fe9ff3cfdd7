// Package pipeline runs one extraction: open the results page, read the
// table, keep the alerts of the target date and merge them into the archive.
package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/rasff/internal/archive"
	"github.com/law-makers/rasff/internal/engine"
	"github.com/law-makers/rasff/internal/engine/browser"
	"github.com/law-makers/rasff/internal/engine/datefilter"
	"github.com/law-makers/rasff/internal/engine/table"
	"github.com/law-makers/rasff/internal/reqctx"
	"github.com/law-makers/rasff/pkg/models"
)

// Pipeline wires a browser session, the table parser, the date filter and
// the archive store.
type Pipeline struct {
	opts   Options
	opener browser.Opener
	store  *archive.Store
}

// New creates a pipeline. A nil opener launches Chrome; a nil store rejects
// schema changes.
func New(opts Options, opener browser.Opener, store *archive.Store) *Pipeline {
	if opener == nil {
		opener = browser.NewChromeOpener()
	}
	if store == nil {
		store = archive.NewStore(archive.SchemaReject)
	}
	return &Pipeline{opts: opts.withDefaults(), opener: opener, store: store}
}

// Name identifies the pipeline variant in logs
func (p *Pipeline) Name() string {
	return "rasff-" + string(p.opts.Strategy)
}

// Target renders date the way the date filter matches it
func (p *Pipeline) Target(date time.Time) string {
	return datefilter.DateSpec{Date: date, Rule: p.opts.DateRule}.Format()
}

// Extraction is the filtered table read from the page
type Extraction struct {
	Table   *models.Table
	Fetched int
	Skipped []table.RowWarning
	Settled bool
}

// Run extracts the alerts published on date and persists them.
//
// Zero matching alerts is a successful run with OutcomeNoAlerts and nothing
// is written.
func (p *Pipeline) Run(ctx context.Context, date time.Time) (*models.RunSummary, error) {
	ctx = reqctx.WithRun(ctx)
	rc, _ := reqctx.FromContext(ctx)

	logger := log.With().Str("run_id", rc.RunID).Logger()
	ctx = logger.WithContext(ctx)

	summary := &models.RunSummary{
		RunID:     rc.RunID,
		Date:      date.Format("2006-01-02"),
		Strategy:  p.opts.Strategy,
		StartedAt: rc.StartTime,
	}
	defer func() { summary.Elapsed = time.Since(rc.StartTime) }()

	logger.Info().
		Str("date", summary.Date).
		Str("strategy", string(p.opts.Strategy)).
		Str("policy", string(p.opts.Policy)).
		Msg("Extraction started")

	ext, err := p.Extract(ctx, date)
	if err != nil {
		logger.Error().Err(err).Msg("Extraction failed")
		return nil, err
	}
	summary.Fetched = ext.Fetched
	summary.Skipped = len(ext.Skipped)
	summary.Matched = ext.Table.Len()
	summary.Alerts = ext.Table

	if ext.Table.Len() == 0 {
		summary.Outcome = models.OutcomeNoAlerts
		logger.Info().Int("rows", ext.Fetched).Msg("No alerts for date")
		return summary, nil
	}

	path, err := archive.ResolvePath(p.opts.Policy, p.opts.Output, date)
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeValidation, "invalid destination", err)
	}

	report, err := p.store.Merge(ctx, path, ext.Table)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Archive merge failed")
		return nil, err
	}

	summary.Outcome = models.OutcomeSaved
	summary.Path = report.Path
	summary.Added = report.Added
	summary.Duplicates = report.Duplicates
	summary.Total = report.Total
	summary.Backfilled = report.Backfilled

	logger.Info().
		Str("path", report.Path).
		Int("matched", summary.Matched).
		Int("added", report.Added).
		Int("total", report.Total).
		Msg("Alerts saved")
	return summary, nil
}

// Extract reads the results table and applies the date filter. The browser
// session is closed before it returns.
func (p *Pipeline) Extract(ctx context.Context, date time.Time) (*Extraction, error) {
	var snap *browser.SettleResult
	err := browser.WithSession(ctx, p.opener, p.opts.Browser, func(s browser.Session) error {
		var err error
		snap, err = p.load(ctx, s, date)
		return err
	})
	if err != nil {
		return nil, err
	}

	parsed, err := table.Parse(snap.HTML)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	for _, w := range parsed.Skipped {
		logger.Warn().Int("row", w.Row).Int("cells", w.Cells).Int("want", w.Want).Msg("Skipping malformed row")
	}

	ext := &Extraction{
		Table:   &parsed.Table,
		Fetched: parsed.Len(),
		Skipped: parsed.Skipped,
		Settled: snap.Settled,
	}

	if p.opts.Strategy == models.StrategyMatch {
		m := datefilter.NewMatcher(date, p.opts.DateRule, p.opts.DateColumn)
		ext.Table, err = m.Filter(&parsed.Table)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("target", m.Target()).Int("rows", ext.Fetched).Int("matched", ext.Table.Len()).Msg("Date filter applied")
	}
	return ext, nil
}

// load drives the page until the table for date is rendered and returns
// its final snapshot.
func (p *Pipeline) load(ctx context.Context, s browser.Session, date time.Time) (*browser.SettleResult, error) {
	logger := zerolog.Ctx(ctx)
	wait := p.opts.Browser.WaitTimeout

	if err := s.Navigate(ctx, p.opts.Endpoint); err != nil {
		return nil, err
	}
	if err := s.WaitUntil(ctx, TableWaitSelector, wait); err != nil {
		return nil, err
	}
	snap, err := p.settle(ctx, s, "", p.opts.LoadSettle)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("polls", snap.Polls).Bool("settled", snap.Settled).Msg("Results table loaded")

	if p.opts.PageSize > 0 {
		if err := s.WaitUntil(ctx, PageSizeSelector, wait); err != nil {
			return nil, err
		}
		var applied bool
		size := strconv.Itoa(p.opts.PageSize)
		if err := s.RunScript(ctx, browser.SetSelectValueScript, &applied, browser.Element(PageSizeSelector), size); err != nil {
			return nil, fmt.Errorf("set page size: %w", err)
		}
		if !applied {
			return nil, engine.NewEngineError(engine.ErrCodeParseError, "page size control rejected value", nil).
				WithDetail("value", size)
		}
		if snap, err = p.refresh(ctx, s, snap.Hash); err != nil {
			return nil, err
		}
		logger.Debug().Str("page_size", size).Int("polls", snap.Polls).Bool("settled", snap.Settled).Msg("Page size applied")
	}

	if p.opts.Strategy == models.StrategyRange {
		q := datefilter.NewRangeQuery(p.opts.Range, wait)
		if err := q.Apply(ctx, s, date); err != nil {
			return nil, err
		}
		if snap, err = p.refresh(ctx, s, snap.Hash); err != nil {
			return nil, err
		}
		logger.Debug().Int("polls", snap.Polls).Bool("settled", snap.Settled).Msg("Date range applied")
	}
	return snap, nil
}

// refresh waits for the table to re-render after a state change
func (p *Pipeline) refresh(ctx context.Context, s browser.Session, baseline string) (*browser.SettleResult, error) {
	if err := s.WaitUntil(ctx, TableWaitSelector, p.opts.Browser.WaitTimeout); err != nil {
		return nil, err
	}
	return p.settle(ctx, s, baseline, p.opts.ChangeSettle)
}

func (p *Pipeline) settle(ctx context.Context, s browser.Session, baseline string, maxWait time.Duration) (*browser.SettleResult, error) {
	return browser.Settle(ctx, s, p.opts.SnapshotSelectors, browser.SettleOptions{
		Baseline: baseline,
		MaxWait:  maxWait,
		Interval: p.opts.PollInterval,
	})
}
