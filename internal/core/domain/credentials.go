package domain

import "time"

// DefaultCredentialsID is the ID under which the single Google account is stored.
const DefaultCredentialsID = "google"

// Credentials stores the user's OAuth tokens for the spreadsheet API.
type Credentials struct {
	// ID is the storage key. starsync keeps one account under DefaultCredentialsID.
	ID string `json:"id"`

	// AccountIdentifier is the user's email, fetched from the userinfo endpoint.
	AccountIdentifier string `json:"account_identifier,omitempty"`

	// OAuth holds the tokens.
	OAuth *OAuthCredentials `json:"oauth,omitempty"`

	// CreatedAt is when the credentials were created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the credentials were last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// OAuthCredentials stores OAuth tokens for a specific user account.
type OAuthCredentials struct {
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`
	// Expiry is when the access token expires.
	Expiry time.Time `json:"expiry,omitempty"`
}

// IsExpired returns true if the OAuth access token has expired.
func (c *OAuthCredentials) IsExpired() bool {
	if c.Expiry.IsZero() {
		return false
	}
	return time.Now().After(c.Expiry)
}

// IsAuthenticated returns true if the credentials contain an access token.
func (c *Credentials) IsAuthenticated() bool {
	return c.OAuth != nil && c.OAuth.AccessToken != ""
}

// HasRefreshToken returns true if a refresh token is available.
func (c *Credentials) HasRefreshToken() bool {
	return c.OAuth != nil && c.OAuth.RefreshToken != ""
}
