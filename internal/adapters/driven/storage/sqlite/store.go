package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/starsync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/starsync/internal/core/domain"
	"github.com/custodia-labs/starsync/internal/core/ports/driven"
)

// DatabaseFile is the name of the database inside the data directory.
const DatabaseFile = "starsync.db"

// Store is a unified SQLite-based storage that provides access to
// all persistence interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.starsync/data/starsync.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".starsync", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL lets the daemon write while CLI commands read.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// WordStore returns a WordStore interface backed by this store.
func (s *Store) WordStore() driven.WordStore {
	return &wordStore{store: s}
}

// SyncStateStore returns a SyncStateStore interface backed by this store.
func (s *Store) SyncStateStore() driven.SyncStateStore {
	return &syncStateStore{store: s}
}

// CredentialsStore returns a CredentialsStore interface backed by this store.
func (s *Store) CredentialsStore() driven.CredentialsStore {
	return &credentialsStore{store: s}
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// migrate runs all pending migrations, each in its own transaction.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Word Store ====================

// wordStore implements driven.WordStore.
type wordStore struct {
	store *Store
}

var _ driven.WordStore = (*wordStore)(nil)

const wordColumns = `id, source_text, target_text, source_lang, target_lang, first_seen, last_seen, synced_at`

// SaveAll replaces the stored set. The whole set is written in one
// transaction so readers never see a partial merge. Rows are upserted by ID
// and a stored synced_at is never cleared, so a MarkSynced that lands between
// a caller's List and SaveAll survives.
func (s *wordStore) SaveAll(ctx context.Context, words []domain.StarredWord) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stale, err := storedIDs(ctx, tx)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO words (position, `+wordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			position = excluded.position,
			source_text = excluded.source_text,
			target_text = excluded.target_text,
			source_lang = excluded.source_lang,
			target_lang = excluded.target_lang,
			first_seen = excluded.first_seen,
			last_seen = excluded.last_seen,
			synced_at = COALESCE(words.synced_at, excluded.synced_at)
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	seen := make(map[string]struct{}, len(words))
	for i, w := range words {
		if w.ID == "" {
			return fmt.Errorf("%w: word at position %d has no id", domain.ErrInvalidInput, i)
		}
		if _, dup := seen[w.ID]; dup {
			return fmt.Errorf("%w: duplicate word id %s", domain.ErrInvalidInput, w.ID)
		}
		seen[w.ID] = struct{}{}
		delete(stale, w.ID)

		if _, err := stmt.ExecContext(ctx, i, w.ID, w.SourceText, w.TargetText, w.SourceLang, w.TargetLang,
			formatTime(w.FirstSeen), formatTime(w.LastSeen), formatNullableTime(w.SyncedAt)); err != nil {
			return fmt.Errorf("saving word %s: %w", w.ID, err)
		}
	}

	for id := range stale {
		if _, err := tx.ExecContext(ctx, "DELETE FROM words WHERE id = ?", id); err != nil {
			return fmt.Errorf("removing word %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing words: %w", err)
	}
	return nil
}

func storedIDs(ctx context.Context, tx *sql.Tx) (map[string]struct{}, error) {
	rows, err := tx.QueryContext(ctx, "SELECT id FROM words")
	if err != nil {
		return nil, fmt.Errorf("listing word ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning word id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// List returns all stored words in page order.
func (s *wordStore) List(ctx context.Context) ([]domain.StarredWord, error) {
	return s.query(ctx, "SELECT "+wordColumns+" FROM words ORDER BY position")
}

// ListUnsynced returns words that have never been exported.
func (s *wordStore) ListUnsynced(ctx context.Context) ([]domain.StarredWord, error) {
	return s.query(ctx, "SELECT "+wordColumns+" FROM words WHERE synced_at IS NULL ORDER BY position")
}

// MarkSynced sets synced_at for the given IDs. Unknown IDs are ignored.
func (s *wordStore) MarkSynced(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, "UPDATE words SET synced_at = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("preparing update: %w", err)
	}
	defer stmt.Close()

	syncedAt := formatTime(at)
	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, syncedAt, id); err != nil {
			return fmt.Errorf("marking word %s synced: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing synced marks: %w", err)
	}
	return nil
}

// Count returns the number of stored words.
func (s *wordStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM words").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting words: %w", err)
	}
	return n, nil
}

// Clear removes all stored words.
func (s *wordStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM words"); err != nil {
		return fmt.Errorf("clearing words: %w", err)
	}
	return nil
}

func (s *wordStore) query(ctx context.Context, query string) ([]domain.StarredWord, error) {
	rows, err := s.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying words: %w", err)
	}
	defer rows.Close()

	var words []domain.StarredWord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var w domain.StarredWord
		var firstSeen, lastSeen string
		var syncedAt sql.NullString
		if err := rows.Scan(&w.ID, &w.SourceText, &w.TargetText, &w.SourceLang, &w.TargetLang,
			&firstSeen, &lastSeen, &syncedAt); err != nil {
			return nil, fmt.Errorf("scanning word: %w", err)
		}
		w.FirstSeen = parseTime(firstSeen)
		w.LastSeen = parseTime(lastSeen)
		w.SyncedAt = parseNullableTime(syncedAt)
		words = append(words, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating words: %w", err)
	}
	return words, nil
}

// ==================== Sync State Store ====================

// syncStateStore implements driven.SyncStateStore.
type syncStateStore struct {
	store *Store
}

var _ driven.SyncStateStore = (*syncStateStore)(nil)

// Save stores or updates sync state.
func (s *syncStateStore) Save(ctx context.Context, state domain.SyncState) error {
	if state.Target == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_states (target, last_sync, rows_written, mode)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(target) DO UPDATE SET
			last_sync = excluded.last_sync,
			rows_written = excluded.rows_written,
			mode = excluded.mode
	`, state.Target, formatNullableTime(state.LastSync), state.RowsWritten, string(state.Mode))

	if err != nil {
		return fmt.Errorf("saving sync state: %w", err)
	}
	return nil
}

// Get retrieves sync state for a target.
func (s *syncStateStore) Get(ctx context.Context, target string) (*domain.SyncState, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT target, last_sync, rows_written, mode
		FROM sync_states WHERE target = ?
	`, target)

	var state domain.SyncState
	var lastSync sql.NullString
	var mode string
	if err := row.Scan(&state.Target, &lastSync, &state.RowsWritten, &mode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning sync state: %w", err)
	}
	state.LastSync = parseNullableTime(lastSync)
	state.Mode = domain.SyncMode(mode)

	return &state, nil
}

// Delete removes sync state for a target.
func (s *syncStateStore) Delete(ctx context.Context, target string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM sync_states WHERE target = ?", target)
	if err != nil {
		return fmt.Errorf("deleting sync state: %w", err)
	}
	return nil
}
