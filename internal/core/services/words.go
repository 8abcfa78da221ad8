package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/starsync/internal/core/domain"
	"github.com/custodia-labs/starsync/internal/core/ports/driven"
	"github.com/custodia-labs/starsync/internal/core/ports/driving"
)

// Ensure WordService implements the interface.
var _ driving.WordService = (*WordService)(nil)

// WordService exposes the stored starred words.
type WordService struct {
	words driven.WordStore
}

// NewWordService creates a new word service.
func NewWordService(words driven.WordStore) *WordService {
	return &WordService{words: words}
}

// List returns stored words, optionally filtered to one language pair.
// pair accepts "en→de", "en->de" or "en-de"; codes are normalised before matching.
func (s *WordService) List(ctx context.Context, pair string) ([]domain.StarredWord, error) {
	words, err := s.words.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}
	if strings.TrimSpace(pair) == "" {
		return words, nil
	}

	src, tgt, err := parsePairFilter(pair)
	if err != nil {
		return nil, err
	}
	filtered := make([]domain.StarredWord, 0, len(words))
	for _, w := range words {
		if w.SourceLang == src && w.TargetLang == tgt {
			filtered = append(filtered, w)
		}
	}
	return filtered, nil
}

// Count returns the total and unsynced word counts.
func (s *WordService) Count(ctx context.Context) (int, int, error) {
	total, err := s.words.Count(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("count words: %w", err)
	}
	unsynced, err := s.words.ListUnsynced(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list unsynced words: %w", err)
	}
	return total, len(unsynced), nil
}

// Clear removes all stored words.
func (s *WordService) Clear(ctx context.Context) error {
	if err := s.words.Clear(ctx); err != nil {
		return fmt.Errorf("clear words: %w", err)
	}
	return nil
}

// parsePairFilter splits a language pair filter into normalised codes.
// The arrow forms are tried first since language codes themselves contain '-'.
func parsePairFilter(pair string) (string, string, error) {
	pair = strings.TrimSpace(pair)
	for _, sep := range []string{"→", "->", ">", ":"} {
		if src, tgt, ok := strings.Cut(pair, sep); ok {
			return NormalizeLanguage(src), NormalizeLanguage(tgt), nil
		}
	}
	if src, tgt, ok := strings.Cut(pair, "-"); ok && !strings.Contains(tgt, "-") {
		return NormalizeLanguage(src), NormalizeLanguage(tgt), nil
	}
	return "", "", fmt.Errorf("%w: language pair %q, expected e.g. en→de or en-de", domain.ErrInvalidInput, pair)
}
