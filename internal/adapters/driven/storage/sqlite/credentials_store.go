package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/starsync/internal/core/domain"
	"github.com/custodia-labs/starsync/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// credentialsStore implements driven.CredentialsStore.
// Tokens are kept as a JSON document so new token fields need no migration.
type credentialsStore struct {
	store *Store
}

var _ driven.CredentialsStore = (*credentialsStore)(nil)

// Save stores or updates credentials.
func (s *credentialsStore) Save(ctx context.Context, creds domain.Credentials) error {
	if creds.ID == "" {
		return domain.ErrInvalidInput
	}

	oauthJSON, err := json.Marshal(creds.OAuth)
	if err != nil {
		return fmt.Errorf("marshalling oauth credentials: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO credentials (id, account_identifier, oauth, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			account_identifier = excluded.account_identifier,
			oauth = excluded.oauth,
			updated_at = excluded.updated_at
	`, creds.ID, nullString(creds.AccountIdentifier), string(oauthJSON),
		formatTime(creds.CreatedAt), formatTime(creds.UpdatedAt))

	if err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	return nil
}

// Get retrieves credentials by ID.
func (s *credentialsStore) Get(ctx context.Context, id string) (*domain.Credentials, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, account_identifier, oauth, created_at, updated_at
		FROM credentials WHERE id = ?
	`, id)

	var creds domain.Credentials
	var account, oauthJSON sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(&creds.ID, &account, &oauthJSON, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning credentials: %w", err)
	}
	creds.AccountIdentifier = account.String
	creds.CreatedAt = parseTime(createdAt)
	creds.UpdatedAt = parseTime(updatedAt)

	if oauthJSON.Valid && oauthJSON.String != jsonNull {
		var oauth domain.OAuthCredentials
		if err := json.Unmarshal([]byte(oauthJSON.String), &oauth); err != nil {
			return nil, fmt.Errorf("unmarshalling oauth credentials: %w", err)
		}
		creds.OAuth = &oauth
	}

	return &creds, nil
}

// Delete removes credentials by ID.
func (s *credentialsStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM credentials WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting credentials: %w", err)
	}
	return nil
}
