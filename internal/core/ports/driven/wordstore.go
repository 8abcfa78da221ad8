package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/starsync/internal/core/domain"
)

// WordStore persists starred words.
type WordStore interface {
	// SaveAll replaces the stored set with words, preserving order.
	// A SyncedAt already stored for an ID is never cleared.
	SaveAll(ctx context.Context, words []domain.StarredWord) error

	// List returns all stored words in insertion order.
	List(ctx context.Context) ([]domain.StarredWord, error)

	// ListUnsynced returns words that have never been exported.
	ListUnsynced(ctx context.Context) ([]domain.StarredWord, error)

	// MarkSynced sets SyncedAt for the given word IDs.
	MarkSynced(ctx context.Context, ids []string, at time.Time) error

	// Count returns the number of stored words.
	Count(ctx context.Context) (int, error)

	// Clear removes all stored words.
	Clear(ctx context.Context) error
}
