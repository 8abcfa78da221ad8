package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/starsync/internal/core/domain"
	"github.com/custodia-labs/starsync/internal/core/ports/driven"
)

// Ensure GoogleProvider implements the interface.
var _ driven.IdentityProvider = (*GoogleProvider)(nil)

// DefaultUserInfoURL returns the signed-in user's profile.
const DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Scopes requested at login: spreadsheet write access and the email address.
var Scopes = []string{sheets.SpreadsheetsScope, "https://www.googleapis.com/auth/userinfo.email"}

// Config configures the provider. Endpoint and UserInfoURL default to Google's.
type Config struct {
	ClientID     string
	ClientSecret string
	Endpoint     oauth2.Endpoint
	UserInfoURL  string

	// HTTPClient is used for token and userinfo requests. Defaults to a 30s timeout client.
	HTTPClient *http.Client
}

// GoogleProvider performs OAuth flows against Google with golang.org/x/oauth2.
type GoogleProvider struct {
	cfg  Config
	http *resty.Client
}

type userInfo struct {
	Email string `json:"email"`
}

// NewGoogleProvider creates a provider. Returns domain.ErrOAuthNotConfigured without a client ID.
func NewGoogleProvider(cfg Config) (*GoogleProvider, error) {
	if cfg.ClientID == "" {
		return nil, domain.ErrOAuthNotConfigured
	}
	if cfg.Endpoint.TokenURL == "" {
		cfg.Endpoint = google.Endpoint
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = DefaultUserInfoURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &GoogleProvider{
		cfg:  cfg,
		http: resty.NewWithClient(cfg.HTTPClient),
	}, nil
}

func (p *GoogleProvider) config(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		Endpoint:     p.cfg.Endpoint,
		RedirectURL:  redirectURI,
		Scopes:       Scopes,
	}
}

func (p *GoogleProvider) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.cfg.HTTPClient)
}

// AuthCodeURL builds the consent URL with an S256 PKCE challenge.
// Offline access and a forced consent prompt make Google return a refresh token.
func (p *GoogleProvider) AuthCodeURL(state, redirectURI string) (string, string) {
	verifier := oauth2.GenerateVerifier()
	u := p.config(redirectURI).AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.S256ChallengeOption(verifier),
	)
	return u, verifier
}

// Exchange trades an authorisation code for tokens.
func (p *GoogleProvider) Exchange(ctx context.Context, code, verifier, redirectURI string) (*domain.OAuthCredentials, error) {
	tok, err := p.config(redirectURI).Exchange(p.withClient(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, describe(err)
	}
	return fromToken(tok), nil
}

// Refresh obtains a new access token from a refresh token.
func (p *GoogleProvider) Refresh(ctx context.Context, refreshToken string) (*domain.OAuthCredentials, error) {
	src := p.config("").TokenSource(p.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, describe(err)
	}
	return fromToken(tok), nil
}

// UserEmail returns the email address of the account owning accessToken.
func (p *GoogleProvider) UserEmail(ctx context.Context, accessToken string) (string, error) {
	var info userInfo
	res, err := p.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetHeader("Accept", "application/json").
		SetResult(&info).
		Get(p.cfg.UserInfoURL)
	if err != nil {
		return "", fmt.Errorf("fetch user info: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("user info request failed with status %d", res.StatusCode())
	}
	if info.Email == "" {
		return "", errors.New("user info has no email")
	}
	return info.Email, nil
}

func fromToken(tok *oauth2.Token) *domain.OAuthCredentials {
	return &domain.OAuthCredentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.Type(),
		Expiry:       tok.Expiry,
	}
}

// describe turns an OAuth error response into "code - description".
// A revoked or expired refresh token means the user has to sign in again.
func describe(err error) error {
	var rerr *oauth2.RetrieveError
	if !errors.As(err, &rerr) || rerr.ErrorCode == "" {
		return err
	}
	msg := rerr.ErrorCode
	if rerr.ErrorDescription != "" {
		msg += " - " + rerr.ErrorDescription
	}
	if rerr.ErrorCode == "invalid_grant" {
		return fmt.Errorf("%w: token error: %s", domain.ErrAuthRequired, msg)
	}
	return fmt.Errorf("token error: %s", msg)
}
