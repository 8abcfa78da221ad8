package services

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/custodia-labs/starsync/internal/core/domain"
)

// DedupeKey returns the key two pairs must share to count as duplicates under mode.
// Unknown modes fall back to exact matching.
func DedupeKey(mode domain.DedupeMode, sourceText, targetText, sourceLang, targetLang string) string {
	switch mode {
	case domain.DedupeText:
		return fold(sourceText) + "\x00" + fold(targetText)
	case domain.DedupeLanguagePair:
		return sourceLang + "\x00" + targetLang + "\x00" + fold(sourceText)
	default:
		return sourceText + "\x00" + targetText + "\x00" + sourceLang + "\x00" + targetLang
	}
}

// folder applies full Unicode case folding, so "Straße" matches "STRASSE"
// and final sigma matches sigma. It is stateless and safe for concurrent use.
var folder = cases.Fold()

func fold(s string) string {
	return folder.String(s)
}

func rawKey(mode domain.DedupeMode, w domain.RawWord) string {
	return DedupeKey(mode, w.SourceText, w.TargetText, w.SourceLang, w.TargetLang)
}

func storedKey(mode domain.DedupeMode, w domain.StarredWord) string {
	return DedupeKey(mode, w.SourceText, w.TargetText, w.SourceLang, w.TargetLang)
}

// Deduplicate removes duplicate pairs, keeping the first occurrence in page order.
func Deduplicate(words []domain.RawWord, mode domain.DedupeMode) ([]domain.RawWord, int) {
	seen := make(map[string]struct{}, len(words))
	out := make([]domain.RawWord, 0, len(words))
	for _, w := range words {
		k := rawKey(mode, w)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, w)
	}
	return out, len(words) - len(out)
}

// Merge folds incoming pairs into the stored set.
//
// Stored words keep their ID, FirstSeen and SyncedAt; a stored word matched by
// an incoming pair has LastSeen set to now. Incoming pairs with no stored match
// are appended, in page order, with a new ID. Stored words that already collide
// with each other under mode (possible after the mode is changed) are left alone.
func Merge(existing []domain.StarredWord, incoming []domain.RawWord, mode domain.DedupeMode, now time.Time) ([]domain.StarredWord, int) {
	merged := make([]domain.StarredWord, len(existing), len(existing)+len(incoming))
	copy(merged, existing)

	index := make(map[string]int, len(existing))
	for i, w := range merged {
		k := storedKey(mode, w)
		if _, ok := index[k]; !ok {
			index[k] = i
		}
	}

	added := 0
	for _, w := range incoming {
		k := rawKey(mode, w)
		if i, ok := index[k]; ok {
			merged[i].LastSeen = now
			continue
		}
		merged = append(merged, domain.StarredWord{
			ID:         uuid.New().String(),
			SourceText: w.SourceText,
			TargetText: w.TargetText,
			SourceLang: w.SourceLang,
			TargetLang: w.TargetLang,
			FirstSeen:  now,
			LastSeen:   now,
		})
		index[k] = len(merged) - 1
		added++
	}
	return merged, added
}
