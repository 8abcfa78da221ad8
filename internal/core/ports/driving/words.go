package driving

import (
	"context"

	"github.com/custodia-labs/starsync/internal/core/domain"
)

// WordService exposes the stored starred words.
type WordService interface {
	// List returns stored words, optionally filtered to one language pair ("en→de" or "en-de").
	List(ctx context.Context, pair string) ([]domain.StarredWord, error)

	// Count returns the total and unsynced word counts.
	Count(ctx context.Context) (total, unsynced int, err error)

	// Clear removes all stored words.
	Clear(ctx context.Context) error
}
