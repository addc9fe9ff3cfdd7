package engine

import (
	"context"
	"time"

	"github.com/law-makers/rasff/pkg/models"
)

// Extractor is the interface that extraction pipelines implement
type Extractor interface {
	// Run extracts and persists the alerts notified on date
	Run(ctx context.Context, date time.Time) (*models.RunSummary, error)

	// Name returns the name of the extractor variant
	Name() string
}
