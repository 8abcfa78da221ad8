package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrSyncDisabled indicates no spreadsheet destination is configured.
	ErrSyncDisabled = errors.New("spreadsheet sync not configured")

	// Authentication Errors.

	// ErrAuthRequired indicates the operation needs credentials but none are stored,
	// or the scraped page asked the user to sign in.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthExpired indicates the authentication has expired and refresh failed.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrTokenRefreshFailed indicates token refresh operation failed.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// ErrOAuthNotConfigured indicates no OAuth client ID has been set.
	ErrOAuthNotConfigured = errors.New("oauth client not configured")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Extraction Errors.

	// ErrExtractionFailed indicates every extraction attempt failed.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrExtractionTimeout indicates the page did not report a result in time.
	ErrExtractionTimeout = errors.New("extraction timed out")

	// ErrNoWordsFound indicates no selector strategy matched the page.
	ErrNoWordsFound = errors.New("no starred words found")

	// Destination Errors.

	// ErrInvalidSpreadsheetID indicates the destination identifier is malformed
	// or does not refer to an accessible spreadsheet.
	ErrInvalidSpreadsheetID = errors.New("invalid spreadsheet identifier")
)
