package cli

import (
	"context"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/law-makers/rasff/internal/engine"
	"github.com/law-makers/rasff/pkg/models"
)

const spinnerTick = 100 * time.Millisecond

// runWithSpinner runs the extraction on a background goroutine while the
// foreground renders an indeterminate spinner on w.
func runWithSpinner(ctx context.Context, w io.Writer, p engine.Extractor, date time.Time, description string) (*models.RunSummary, error) {
	type result struct {
		summary *models.RunSummary
		err     error
	}
	done := make(chan result, 1)
	go func() {
		s, err := p.Run(ctx, date)
		done <- result{s, err}
	}()

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	ticker := time.NewTicker(spinnerTick)
	defer ticker.Stop()

	for {
		select {
		case r := <-done:
			_ = bar.Finish()
			return r.summary, r.err
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}
