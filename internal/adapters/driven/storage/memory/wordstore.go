package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/starsync/internal/core/domain"
	"github.com/custodia-labs/starsync/internal/core/ports/driven"
)

// Ensure WordStore implements the interface.
var _ driven.WordStore = (*WordStore)(nil)

// WordStore is an in-memory implementation of driven.WordStore.
type WordStore struct {
	mu    sync.RWMutex
	words []domain.StarredWord
}

// NewWordStore creates a new in-memory word store.
func NewWordStore() *WordStore {
	return &WordStore{}
}

// SaveAll replaces the stored set. A SyncedAt already stored for an ID is
// kept when the incoming copy has none.
func (s *WordStore) SaveAll(_ context.Context, words []domain.StarredWord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	synced := make(map[string]time.Time, len(s.words))
	for _, w := range s.words {
		if w.IsSynced() {
			synced[w.ID] = w.SyncedAt
		}
	}

	s.words = append([]domain.StarredWord(nil), words...)
	for i := range s.words {
		if at, ok := synced[s.words[i].ID]; ok {
			s.words[i].SyncedAt = at
		}
	}
	return nil
}

// List returns all words in insertion order.
func (s *WordStore) List(_ context.Context) ([]domain.StarredWord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.StarredWord(nil), s.words...), nil
}

// ListUnsynced returns words that have never been exported.
func (s *WordStore) ListUnsynced(_ context.Context) ([]domain.StarredWord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.StarredWord
	for _, w := range s.words {
		if !w.IsSynced() {
			out = append(out, w)
		}
	}
	return out, nil
}

// MarkSynced sets SyncedAt on the given IDs. Unknown IDs are ignored.
func (s *WordStore) MarkSynced(_ context.Context, ids []string, at time.Time) error {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.words {
		if _, ok := set[s.words[i].ID]; ok {
			s.words[i].SyncedAt = at
		}
	}
	return nil
}

// Count returns the number of stored words.
func (s *WordStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words), nil
}

// Clear removes all words.
func (s *WordStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.words = nil
	return nil
}
