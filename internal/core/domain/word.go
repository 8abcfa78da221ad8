package domain

import (
	"fmt"
	"time"
)

// UndeterminedLanguage is the BCP 47 code used when a language is missing or malformed.
const UndeterminedLanguage = "und"

// RawWord is a source/translation pair exactly as scraped from the page.
// Nothing about it has been validated.
type RawWord struct {
	SourceText string `json:"source_text"`
	TargetText string `json:"target_text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// StarredWord is a cleaned, deduplicated saved translation.
type StarredWord struct {
	// ID is the unique identifier (UUID), assigned on first merge.
	ID string

	// SourceText is the text the user looked up.
	SourceText string

	// TargetText is the translation shown by the page.
	TargetText string

	// SourceLang is the language code of SourceText.
	SourceLang string

	// TargetLang is the language code of TargetText.
	TargetLang string

	// FirstSeen is when the word was first extracted.
	FirstSeen time.Time

	// LastSeen is when the word was most recently extracted.
	LastSeen time.Time

	// SyncedAt is when the word was last written to the spreadsheet.
	// Zero means the word has never been exported.
	SyncedAt time.Time
}

// IsSynced returns true if the word has been written to the spreadsheet.
func (w *StarredWord) IsSynced() bool {
	return !w.SyncedAt.IsZero()
}

// LanguagePair returns the pair in "src→tgt" form.
func (w *StarredWord) LanguagePair() string {
	return fmt.Sprintf("%s→%s", w.SourceLang, w.TargetLang)
}

// DedupeMode selects the key used to decide whether two words are duplicates.
type DedupeMode string

// Available dedupe modes.
const (
	// DedupeExact treats words as duplicates only when text and languages all match.
	DedupeExact DedupeMode = "exact"

	// DedupeText compares source and target text only, ignoring case and languages.
	DedupeText DedupeMode = "text"

	// DedupeLanguagePair compares the language pair and the source text, ignoring case.
	DedupeLanguagePair DedupeMode = "language_pair"
)

// IsValid returns true if the dedupe mode is recognised.
func (m DedupeMode) IsValid() bool {
	switch m {
	case DedupeExact, DedupeText, DedupeLanguagePair:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m DedupeMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m DedupeMode) Description() string {
	switch m {
	case DedupeExact:
		return "Exact (text and languages)"
	case DedupeText:
		return "Text only (case-insensitive)"
	case DedupeLanguagePair:
		return "Language pair + source text"
	default:
		return "Unknown"
	}
}
