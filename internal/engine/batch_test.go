package engine

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/rasff/pkg/models"
)

// countingExtractor records peak parallelism and fails on chosen days
type countingExtractor struct {
	running atomic.Int32
	peak    atomic.Int32
	failDay int

	mu   sync.Mutex
	seen []string
}

func (e *countingExtractor) Run(ctx context.Context, date time.Time) (*models.RunSummary, error) {
	n := e.running.Add(1)
	defer e.running.Add(-1)
	for {
		p := e.peak.Load()
		if n <= p || e.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)

	e.mu.Lock()
	e.seen = append(e.seen, date.Format("2006-01-02"))
	e.mu.Unlock()

	if date.Day() == e.failDay {
		return nil, NewEngineError(ErrCodeNavigationTimeout, "table did not load", nil)
	}
	return &models.RunSummary{Date: date.Format("2006-01-02"), Outcome: models.OutcomeNoAlerts}, nil
}

func (e *countingExtractor) Name() string { return "counting" }

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestBatchRunner_BoundedConcurrency(t *testing.T) {
	ext := &countingExtractor{failDay: 3}
	dates, err := DateRange(day(1), day(8))
	require.NoError(t, err)

	var ok, failed int
	for r := range NewBatchRunner(ext, 2).Run(context.Background(), dates) {
		if r.Err != nil {
			failed++
			assert.True(t, errors.Is(r.Err, ErrNavigationTimeout))
			assert.Equal(t, 3, r.Date.Day())
			continue
		}
		ok++
		assert.Equal(t, r.Date.Format("2006-01-02"), r.Summary.Date)
	}

	assert.Equal(t, 7, ok)
	assert.Equal(t, 1, failed)
	assert.LessOrEqual(t, ext.peak.Load(), int32(2))

	sort.Strings(ext.seen)
	assert.Len(t, ext.seen, 8)
}

func TestBatchRunner_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var errs int
	for r := range NewBatchRunner(&countingExtractor{}, 1).Run(ctx, []time.Time{day(1), day(2), day(3)}) {
		if r.Err != nil {
			errs++
		}
	}
	assert.Equal(t, 3, errs)
}

func TestNewBatchRunner_Limits(t *testing.T) {
	assert.Equal(t, MaxBatchConcurrency, NewBatchRunner(&countingExtractor{}, 50).concurrency)

	n := NewBatchRunner(&countingExtractor{}, 0).concurrency
	assert.GreaterOrEqual(t, n, 1)
	assert.LessOrEqual(t, n, MaxBatchConcurrency)
}

func TestDateRange(t *testing.T) {
	dates, err := DateRange(time.Date(2025, time.February, 27, 15, 0, 0, 0, time.UTC), day(2))
	require.NoError(t, err)

	var got []string
	for _, d := range dates {
		got = append(got, d.Format("2006-01-02"))
	}
	assert.Equal(t, []string{"2025-02-27", "2025-02-28", "2025-03-01", "2025-03-02"}, got)

	_, err = DateRange(day(5), day(4))
	assert.True(t, errors.Is(err, ErrValidation))
}
