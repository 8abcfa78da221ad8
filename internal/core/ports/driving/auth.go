package driving

import (
	"context"
	"time"
)

// AuthService manages the Google account used for spreadsheet export.
type AuthService interface {
	// Login runs the interactive OAuth flow. openURL is called with the
	// consent URL; it typically opens the user's browser.
	Login(ctx context.Context, openURL func(string) error) (*AuthStatus, error)

	// Logout removes stored credentials.
	Logout(ctx context.Context) error

	// Status reports the stored account, if any.
	Status(ctx context.Context) (*AuthStatus, error)

	// Refresh proactively refreshes the access token.
	Refresh(ctx context.Context) error
}

// AuthStatus describes the stored account.
type AuthStatus struct {
	Authenticated bool
	Account       string
	Expiry        time.Time
}
