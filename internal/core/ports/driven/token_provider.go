package driven

import "context"

// TokenProvider provides access tokens for authenticated API calls.
// Implementations handle token refresh transparently.
//
// This interface is designed to work alongside the Scheduler's proactive refresh:
//   - Scheduler: Proactive refresh every 45min (prevents refresh token expiry)
//   - TokenProvider: Reactive refresh if token expired when the API needs it
type TokenProvider interface {
	// GetToken returns a valid access token.
	// If the current token is expired, it will be refreshed automatically.
	GetToken(ctx context.Context) (string, error)

	// InvalidateCache drops the cached token so the next GetToken refreshes.
	// Called after the API rejects a token with 401.
	InvalidateCache()

	// IsAuthenticated returns true if valid authentication is available.
	IsAuthenticated() bool
}
