package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/starsync/internal/core/domain"
)

// IdentityProvider performs the OAuth flows against the account provider.
type IdentityProvider interface {
	// AuthCodeURL builds the consent URL for a PKCE authorisation code flow.
	// The returned verifier must be passed back to Exchange.
	AuthCodeURL(state, redirectURI string) (authURL, verifier string)

	// Exchange trades an authorisation code for tokens.
	Exchange(ctx context.Context, code, verifier, redirectURI string) (*domain.OAuthCredentials, error)

	// Refresh obtains a new access token using a refresh token.
	Refresh(ctx context.Context, refreshToken string) (*domain.OAuthCredentials, error)

	// UserEmail returns the email address of the account owning accessToken.
	UserEmail(ctx context.Context, accessToken string) (string, error)
}

// CallbackServer receives the OAuth redirect on a loopback address.
type CallbackServer interface {
	// Start begins listening. RedirectURI is valid after Start returns.
	Start() error

	// RedirectURI is the URI to register with the consent request.
	RedirectURI() string

	// WaitForCode blocks until the redirect delivers a code, an error, or timeout elapses.
	WaitForCode(timeout time.Duration) (string, error)

	// Stop shuts the server down.
	Stop() error
}

// CallbackServerFactory creates a callback server that only accepts expectedState.
type CallbackServerFactory func(expectedState string) CallbackServer
