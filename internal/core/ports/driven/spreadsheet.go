package driven

import (
	"context"

	"github.com/custodia-labs/starsync/internal/core/domain"
)

// SpreadsheetClient writes rows to a remote spreadsheet.
// Errors from the remote API are reported as domain.ErrRateLimited,
// domain.ErrAuthExpired, domain.ErrInvalidSpreadsheetID or wrapped raw errors.
type SpreadsheetClient interface {
	// Validate checks the spreadsheet exists and is accessible.
	// Returns the spreadsheet title.
	Validate(ctx context.Context, spreadsheetID string) (string, error)

	// EnsureSheet creates the tab if missing and writes the header row if empty.
	EnsureSheet(ctx context.Context, spreadsheetID, sheetName string) error

	// AppendRows appends rows after the last filled row.
	AppendRows(ctx context.Context, spreadsheetID, sheetName string, rows []domain.SheetRow) (int, error)

	// ReplaceRows clears the tab and writes the header followed by rows.
	ReplaceRows(ctx context.Context, spreadsheetID, sheetName string, rows []domain.SheetRow) (int, error)
}
