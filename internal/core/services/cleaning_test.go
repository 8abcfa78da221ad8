package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/starsync/internal/core/domain"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "house", "house"},
		{"trims", "  house \n", "house"},
		{"collapses whitespace", "big\t\t  red\nhouse", "big red house"},
		{"no-break space", "a\u00a0b", "a b"},
		{"zero width", "ho\u200bu\u200dse\ufeff", "house"},
		{"control", "ho\x00use\x07", "house"},
		{"nfc", "cafe\u0301", "caf\u00e9"},
		{"only junk", "\u200b \u2060", ""},
		{"composes across removed zero width", "cafe\u200b\u0301", "caf\u00e9"},
		{"soft hyphen", "Fuß\u00adball", "Fußball"},
		{"bidi marks", "\u200fשלום\u200e", "שלום"},
		{"isolates", "\u2068house\u2069 \u2066Haus\u2069", "house Haus"},
		{"embedding", "\u202bمرحبا\u202c", "مرحبا"},
		{"joiner in emoji kept", "family \U0001F468\u200d\U0001F469\u200d\U0001F467", "family \U0001F468\u200d\U0001F469\u200d\U0001F467"},
		{"joiner after presentation selector kept", "\u2764\ufe0f\u200d\U0001F525", "\u2764\ufe0f\u200d\U0001F525"},
		{"trailing joiner dropped", "\U0001F468\u200d", "\U0001F468"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanText(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, norm.NFC.IsNormalString(got), "output is NFC")
		})
	}
}

func TestCleanText_ExactDedupeAfterCleaning(t *testing.T) {
	words, _ := CleanWords([]domain.RawWord{
		raw("caf\u00e9", "coffee", "fr", "en"),
		raw("cafe\u200b\u0301", "coffee", "fr", "en"),
	})
	kept, dupes := Deduplicate(words, domain.DedupeExact)
	assert.Len(t, kept, 1)
	assert.Equal(t, 1, dupes)
}

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en", "en"},
		{" DE ", "de"},
		{"en_us", "en-US"},
		{"EN-gb", "en-GB"},
		{"zh-hant", "zh-Hant"},
		{"zh-hant-tw", "zh-Hant-TW"},
		{"es-419", "es-419"},
		{"fil", "fil"},
		{"", "und"},
		{"e", "und"},
		{"english", "und"},
		{"en-", "und"},
		{"12", "und"},
		{"en-x1", "und"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLanguage(tt.in))
		})
	}
}

func TestCleanWord(t *testing.T) {
	w, ok := CleanWord(domain.RawWord{
		SourceText: " the\u200b  house ",
		TargetText: "das Haus",
		SourceLang: "EN",
		TargetLang: "",
	})

	require.True(t, ok)
	assert.Equal(t, domain.RawWord{
		SourceText: "the house",
		TargetText: "das Haus",
		SourceLang: "en",
		TargetLang: domain.UndeterminedLanguage,
	}, w)
}

func TestCleanWord_Rejects(t *testing.T) {
	long := strings.Repeat("a", MaxTextRunes+1)
	exact := strings.Repeat("\u00fc", MaxTextRunes)

	tests := []struct {
		name string
		in   domain.RawWord
		ok   bool
	}{
		{"empty source", domain.RawWord{SourceText: " ", TargetText: "x"}, false},
		{"empty target", domain.RawWord{SourceText: "x", TargetText: "\u200b"}, false},
		{"source too long", domain.RawWord{SourceText: long, TargetText: "x"}, false},
		{"target too long", domain.RawWord{SourceText: "x", TargetText: long}, false},
		{"limit counts runes", domain.RawWord{SourceText: exact, TargetText: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := CleanWord(tt.in)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestCleanWords(t *testing.T) {
	raw := []domain.RawWord{
		{SourceText: "a", TargetText: "b", SourceLang: "en", TargetLang: "de"},
		{SourceText: "", TargetText: "b"},
		{SourceText: "c", TargetText: "d", SourceLang: "en_GB", TargetLang: "fr"},
	}

	clean, discarded := CleanWords(raw)

	assert.Equal(t, 1, discarded)
	require.Len(t, clean, 2)
	assert.Equal(t, "a", clean[0].SourceText)
	assert.Equal(t, "en-GB", clean[1].SourceLang)
}

func TestCleanWords_Empty(t *testing.T) {
	clean, discarded := CleanWords(nil)
	assert.Empty(t, clean)
	assert.Zero(t, discarded)
}
