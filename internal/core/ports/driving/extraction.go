package driving

import (
	"context"

	"github.com/custodia-labs/starsync/internal/core/domain"
)

// ExtractionService runs the scrape, clean and merge pipeline.
type ExtractionService interface {
	// Run extracts starred words from the page and merges them into the store.
	Run(ctx context.Context) (*domain.ExtractionReport, error)
}
