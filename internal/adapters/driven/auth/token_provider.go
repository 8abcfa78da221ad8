package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/starsync/internal/core/domain"
	"github.com/custodia-labs/starsync/internal/core/ports/driven"
)

// Ensure OAuthTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*OAuthTokenProvider)(nil)

// DefaultRefreshBuffer is how long before expiry a token is treated as stale.
const DefaultRefreshBuffer = 5 * time.Minute

// OAuthTokenProvider provides OAuth access tokens with automatic refresh.
type OAuthTokenProvider struct {
	credentialsID    string
	credentialsStore driven.CredentialsStore
	identity         driven.IdentityProvider

	mu            sync.RWMutex
	cachedToken   string
	cacheExpiry   time.Time
	rejected      string
	refreshBuffer time.Duration
	now           func() time.Time
}

// NewOAuthTokenProvider creates a token provider for the stored Google account.
// identity may be nil, in which case stale tokens cannot be refreshed.
func NewOAuthTokenProvider(
	credentialsStore driven.CredentialsStore,
	identity driven.IdentityProvider,
) *OAuthTokenProvider {
	return &OAuthTokenProvider{
		credentialsID:    domain.DefaultCredentialsID,
		credentialsStore: credentialsStore,
		identity:         identity,
		refreshBuffer:    DefaultRefreshBuffer,
		now:              time.Now,
	}
}

// GetToken returns a valid access token, refreshing if necessary.
//
//nolint:gocognit,nestif // Token refresh with necessary concurrency checks
func (p *OAuthTokenProvider) GetToken(ctx context.Context) (string, error) {
	// Fast path: check cache with read lock
	p.mu.RLock()
	if p.cachedToken != "" && p.now().Before(p.cacheExpiry) {
		token := p.cachedToken
		p.mu.RUnlock()
		return token, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring write lock
	if p.cachedToken != "" && p.now().Before(p.cacheExpiry) {
		return p.cachedToken, nil
	}

	creds, err := p.credentialsStore.Get(ctx, p.credentialsID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.ErrAuthRequired
	}
	if err != nil {
		return "", fmt.Errorf("get credentials: %w", err)
	}
	if !creds.IsAuthenticated() {
		return "", domain.ErrAuthRequired
	}

	stale := p.rejected != "" && p.rejected == creds.OAuth.AccessToken
	needsRefresh := stale || creds.OAuth.IsExpired()
	if !creds.OAuth.Expiry.IsZero() {
		needsRefresh = needsRefresh || creds.OAuth.Expiry.Sub(p.now()) < p.refreshBuffer
	}

	if needsRefresh {
		if !creds.HasRefreshToken() || p.identity == nil {
			if creds.OAuth.IsExpired() || stale {
				return "", domain.ErrAuthRequired
			}
		} else {
			fresh, err := p.identity.Refresh(ctx, creds.OAuth.RefreshToken)
			if err != nil {
				return "", fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
			}

			creds.OAuth.AccessToken = fresh.AccessToken
			if fresh.RefreshToken != "" {
				creds.OAuth.RefreshToken = fresh.RefreshToken
			}
			creds.OAuth.Expiry = fresh.Expiry
			if fresh.TokenType != "" {
				creds.OAuth.TokenType = fresh.TokenType
			}
			creds.UpdatedAt = p.now()

			if err := p.credentialsStore.Save(ctx, *creds); err != nil {
				return "", fmt.Errorf("save refreshed credentials: %w", err)
			}
		}
	}

	p.rejected = ""
	p.cachedToken = creds.OAuth.AccessToken
	if !creds.OAuth.Expiry.IsZero() {
		p.cacheExpiry = creds.OAuth.Expiry.Add(-p.refreshBuffer)
	} else {
		p.cacheExpiry = p.now().Add(time.Hour)
	}

	return p.cachedToken, nil
}

// IsAuthenticated returns true if usable tokens are cached or stored.
func (p *OAuthTokenProvider) IsAuthenticated() bool {
	p.mu.RLock()
	if p.cachedToken != "" && p.now().Before(p.cacheExpiry) {
		p.mu.RUnlock()
		return true
	}
	p.mu.RUnlock()

	creds, err := p.credentialsStore.Get(context.Background(), p.credentialsID)
	if err != nil {
		return false
	}
	return creds.IsAuthenticated()
}

// InvalidateCache clears the cached token. If the stored token is still the
// one that was cached, the next GetToken refreshes it regardless of expiry.
// Credentials replaced by a new login are used as they are.
func (p *OAuthTokenProvider) InvalidateCache() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cachedToken != "" {
		p.rejected = p.cachedToken
	}
	p.cachedToken = ""
	p.cacheExpiry = time.Time{}
}
