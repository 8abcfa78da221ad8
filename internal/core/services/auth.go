package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/starsync/internal/core/domain"
	"github.com/custodia-labs/starsync/internal/core/ports/driven"
	"github.com/custodia-labs/starsync/internal/core/ports/driving"
	"github.com/custodia-labs/starsync/internal/logger"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// DefaultLoginTimeout bounds how long Login waits for the user to approve access.
const DefaultLoginTimeout = 5 * time.Minute

// AuthService manages the Google account used for spreadsheet export.
type AuthService struct {
	identity    driven.IdentityProvider
	creds       driven.CredentialsStore
	tokens      driven.TokenProvider
	newCallback driven.CallbackServerFactory

	loginTimeout time.Duration
	now          func() time.Time
}

// NewAuthService creates a new auth service.
// identity is nil when no OAuth client has been configured; tokens may be nil.
func NewAuthService(
	identity driven.IdentityProvider,
	creds driven.CredentialsStore,
	tokens driven.TokenProvider,
	newCallback driven.CallbackServerFactory,
) *AuthService {
	return &AuthService{
		identity:     identity,
		creds:        creds,
		tokens:       tokens,
		newCallback:  newCallback,
		loginTimeout: DefaultLoginTimeout,
		now:          time.Now,
	}
}

// Login runs the loopback OAuth flow and stores the resulting tokens.
func (s *AuthService) Login(ctx context.Context, openURL func(string) error) (*driving.AuthStatus, error) {
	if s.identity == nil {
		return nil, domain.ErrOAuthNotConfigured
	}

	state, err := randomState()
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}

	cb := s.newCallback(state)
	if err := cb.Start(); err != nil {
		return nil, fmt.Errorf("start callback server: %w", err)
	}
	defer func() {
		if err := cb.Stop(); err != nil {
			logger.Debug("stop callback server: %v", err)
		}
	}()

	redirectURI := cb.RedirectURI()
	authURL, verifier := s.identity.AuthCodeURL(state, redirectURI)
	if openURL != nil {
		if err := openURL(authURL); err != nil {
			logger.Warn("Could not open browser: %v", err)
		}
	}

	code, err := cb.WaitForCode(s.loginTimeout)
	if err != nil {
		return nil, fmt.Errorf("authorisation: %w", err)
	}

	tok, err := s.identity.Exchange(ctx, code, verifier, redirectURI)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	email, err := s.identity.UserEmail(ctx, tok.AccessToken)
	if err != nil {
		logger.Warn("Could not look up account email: %v", err)
	}

	now := s.now()
	creds := domain.Credentials{
		ID:                domain.DefaultCredentialsID,
		AccountIdentifier: email,
		OAuth:             tok,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if existing, err := s.creds.Get(ctx, domain.DefaultCredentialsID); err == nil {
		creds.CreatedAt = existing.CreatedAt
		if tok.RefreshToken == "" && existing.OAuth != nil {
			creds.OAuth.RefreshToken = existing.OAuth.RefreshToken
		}
	}
	if err := s.creds.Save(ctx, creds); err != nil {
		return nil, fmt.Errorf("save credentials: %w", err)
	}
	s.invalidate()

	logger.Info("Signed in as %s", email)
	return statusOf(&creds), nil
}

// Logout removes stored credentials.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.creds.Delete(ctx, domain.DefaultCredentialsID); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	s.invalidate()
	return nil
}

// Status reports the stored account.
func (s *AuthService) Status(ctx context.Context) (*driving.AuthStatus, error) {
	creds, err := s.creds.Get(ctx, domain.DefaultCredentialsID)
	if errors.Is(err, domain.ErrNotFound) {
		return &driving.AuthStatus{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credentials: %w", err)
	}
	return statusOf(creds), nil
}

// Refresh exchanges the stored refresh token for a new access token.
// Refresh tokens unused for long periods can be revoked, so the scheduler
// calls this regularly even when nothing needs the API.
func (s *AuthService) Refresh(ctx context.Context) error {
	if s.identity == nil {
		return domain.ErrOAuthNotConfigured
	}
	creds, err := s.creds.Get(ctx, domain.DefaultCredentialsID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrAuthRequired
	}
	if err != nil {
		return fmt.Errorf("get credentials: %w", err)
	}
	if !creds.HasRefreshToken() {
		return domain.ErrAuthRequired
	}

	tok, err := s.identity.Refresh(ctx, creds.OAuth.RefreshToken)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = creds.OAuth.RefreshToken
	}
	creds.OAuth = tok
	creds.UpdatedAt = s.now()
	if err := s.creds.Save(ctx, *creds); err != nil {
		return fmt.Errorf("save refreshed credentials: %w", err)
	}
	s.invalidate()
	logger.Debug("Access token refreshed, expires %s", tok.Expiry.Format(time.RFC3339))
	return nil
}

func (s *AuthService) invalidate() {
	if s.tokens != nil {
		s.tokens.InvalidateCache()
	}
}

func statusOf(c *domain.Credentials) *driving.AuthStatus {
	st := &driving.AuthStatus{
		Authenticated: c.IsAuthenticated(),
		Account:       c.AccountIdentifier,
	}
	if c.OAuth != nil {
		st.Expiry = c.OAuth.Expiry
	}
	return st
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
