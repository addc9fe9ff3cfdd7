package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/law-makers/rasff/pkg/models"
)

// MaxBatchConcurrency caps parallel browser sessions in one batch
const MaxBatchConcurrency = 4

// OptimalConcurrency picks a parallelism for batch runs. Every run owns a
// Chrome process, so this stays well below the CPU count.
func OptimalConcurrency() int {
	n := runtime.NumCPU() / 2
	if n < 1 {
		n = 1
	}
	if n > MaxBatchConcurrency {
		n = MaxBatchConcurrency
	}
	return n
}

// DateResult is the outcome of one date of a batch
type DateResult struct {
	Date    time.Time
	Summary *models.RunSummary
	Err     error
}

// BatchRunner runs an Extractor over several dates with bounded concurrency
type BatchRunner struct {
	extractor   Extractor
	concurrency int
}

// NewBatchRunner creates a BatchRunner.
// If concurrency <= 0, it is derived from the CPU count.
func NewBatchRunner(extractor Extractor, concurrency int) *BatchRunner {
	if concurrency <= 0 {
		concurrency = OptimalConcurrency()
	}
	if concurrency > MaxBatchConcurrency {
		concurrency = MaxBatchConcurrency
	}
	return &BatchRunner{
		extractor:   extractor,
		concurrency: concurrency,
	}
}

// Run processes dates and streams one result per date. The channel is closed
// once every started run has finished. Dates not started before ctx ends are
// reported with ctx's error.
func (b *BatchRunner) Run(ctx context.Context, dates []time.Time) <-chan DateResult {
	results := make(chan DateResult, len(dates))

	go func() {
		var wg sync.WaitGroup
		sem := make(chan struct{}, b.concurrency)

		for _, d := range dates {
			if err := ctx.Err(); err != nil {
				results <- DateResult{Date: d, Err: err}
				continue
			}
			select {
			case <-ctx.Done():
				results <- DateResult{Date: d, Err: ctx.Err()}
				continue
			case sem <- struct{}{}:
			}

			wg.Add(1)
			go func(date time.Time) {
				defer wg.Done()
				defer func() { <-sem }()

				summary, err := b.extractor.Run(ctx, date)
				results <- DateResult{Date: date, Summary: summary, Err: err}
			}(d)
		}

		wg.Wait()
		close(results)
	}()

	return results
}

// DateRange returns every calendar day from from to to, both included
func DateRange(from, to time.Time) ([]time.Time, error) {
	from = truncateDay(from)
	to = truncateDay(to)
	if to.Before(from) {
		return nil, NewEngineError(ErrCodeValidation,
			fmt.Sprintf("range end %s is before start %s", to.Format("2006-01-02"), from.Format("2006-01-02")), nil)
	}

	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
