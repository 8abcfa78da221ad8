package driven

import (
	"context"

	"github.com/custodia-labs/starsync/internal/core/domain"
)

// SyncStateStore persists spreadsheet export progress.
type SyncStateStore interface {
	// Save stores or updates sync state.
	Save(ctx context.Context, state domain.SyncState) error

	// Get retrieves sync state for a target.
	// Returns domain.ErrNotFound if the target has never been synced.
	Get(ctx context.Context, target string) (*domain.SyncState, error)

	// Delete removes sync state for a target.
	Delete(ctx context.Context, target string) error
}
