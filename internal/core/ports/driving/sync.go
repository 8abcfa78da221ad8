package driving

import (
	"context"

	"github.com/custodia-labs/starsync/internal/core/domain"
)

// SyncOrchestrator exports stored words to the configured spreadsheet.
type SyncOrchestrator interface {
	// Sync writes words to the spreadsheet according to the configured mode.
	Sync(ctx context.Context) (*domain.SyncReport, error)

	// Status returns the current sync status.
	Status(ctx context.Context) (*SyncStatus, error)
}

// SyncStatus represents the current state of the export.
type SyncStatus struct {
	// Target identifies the spreadsheet and tab.
	Target string

	// Running indicates if an export is currently in progress.
	Running bool

	// Pending is the number of words not yet exported.
	Pending int

	// LastSync is the last successful export, if any.
	LastSync *domain.SyncState
}
