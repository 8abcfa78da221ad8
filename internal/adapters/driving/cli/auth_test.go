package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/starsync/internal/core/domain"
	"github.com/custodia-labs/starsync/internal/core/ports/driving"
)

type mockAuth struct {
	status    driving.AuthStatus
	loginErr  error
	loggedOut bool
	opened    error
}

func (m *mockAuth) Login(_ context.Context, openURL func(string) error) (*driving.AuthStatus, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	m.opened = openURL("https://accounts.example.com/o/oauth2/auth?state=abc")
	s := m.status
	return &s, nil
}

func (m *mockAuth) Logout(context.Context) error {
	m.loggedOut = true
	return nil
}

func (m *mockAuth) Status(context.Context) (*driving.AuthStatus, error) {
	s := m.status
	return &s, nil
}

func (m *mockAuth) Refresh(context.Context) error { return nil }

func stubBrowser(t *testing.T) *[]string {
	t.Helper()
	var opened []string
	old := openBrowser
	openBrowser = func(u string) error {
		opened = append(opened, u)
		return nil
	}
	t.Cleanup(func() { openBrowser = old })
	return &opened
}

func TestAuthLogin(t *testing.T) {
	opened := stubBrowser(t)
	withServices(t, Services{Auth: &mockAuth{status: driving.AuthStatus{Authenticated: true, Account: "learner@example.com"}}})

	out, err := execute(t, "", "auth", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "https://accounts.example.com/o/oauth2/auth?state=abc")
	assert.Contains(t, out, "Signed in as learner@example.com.")
	assert.Equal(t, []string{"https://accounts.example.com/o/oauth2/auth?state=abc"}, *opened)
}

func TestAuthLogin_NoBrowser(t *testing.T) {
	opened := stubBrowser(t)
	withServices(t, Services{Auth: &mockAuth{status: driving.AuthStatus{Authenticated: true}}})

	out, err := execute(t, "", "auth", "login", "--no-browser")
	require.NoError(t, err)
	assert.Empty(t, *opened)
	assert.Contains(t, out, "Signed in.")
}

func TestAuthLogin_NotConfigured(t *testing.T) {
	withServices(t, Services{Auth: &mockAuth{loginErr: domain.ErrOAuthNotConfigured}})

	_, err := execute(t, "", "auth", "login")
	require.ErrorIs(t, err, domain.ErrOAuthNotConfigured)
	assert.Contains(t, err.Error(), "oauth.client_id")
}

func TestAuthLogin_Failure(t *testing.T) {
	withServices(t, Services{Auth: &mockAuth{loginErr: errors.New("access_denied")}})

	_, err := execute(t, "", "auth", "login")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sign-in failed: access_denied")
}

func TestAuthLogout(t *testing.T) {
	mock := &mockAuth{}
	withServices(t, Services{Auth: mock})

	out, err := execute(t, "", "auth", "logout")
	require.NoError(t, err)
	assert.True(t, mock.loggedOut)
	assert.Contains(t, out, "Signed out.")
}

func TestAuthStatus(t *testing.T) {
	withServices(t, Services{Auth: &mockAuth{}})
	out, err := execute(t, "", "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")

	expiry := time.Date(2026, 5, 1, 10, 0, 0, 0, time.Local)
	withServices(t, Services{Auth: &mockAuth{status: driving.AuthStatus{
		Authenticated: true, Account: "learner@example.com", Expiry: expiry,
	}}})
	out, err = execute(t, "", "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as learner@example.com")
	assert.Contains(t, out, "2026-05-01 10:00:00")
}
