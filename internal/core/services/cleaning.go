package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/starsync/internal/core/domain"
)

// MaxTextRunes is the longest text accepted on either side of a pair.
const MaxTextRunes = 5000

// CleanWords validates and normalises scraped pairs.
// Pairs with an empty side after cleaning, or a side longer than MaxTextRunes,
// are discarded. Missing or malformed language codes become "und".
func CleanWords(raw []domain.RawWord) ([]domain.RawWord, int) {
	clean := make([]domain.RawWord, 0, len(raw))
	discarded := 0
	for _, w := range raw {
		c, ok := CleanWord(w)
		if !ok {
			discarded++
			continue
		}
		clean = append(clean, c)
	}
	return clean, discarded
}

// CleanWord normalises a single pair and reports whether it is usable.
func CleanWord(w domain.RawWord) (domain.RawWord, bool) {
	c := domain.RawWord{
		SourceText: CleanText(w.SourceText),
		TargetText: CleanText(w.TargetText),
		SourceLang: NormalizeLanguage(w.SourceLang),
		TargetLang: NormalizeLanguage(w.TargetLang),
	}
	if c.SourceText == "" || c.TargetText == "" {
		return c, false
	}
	if utf8.RuneCountInString(c.SourceText) > MaxTextRunes || utf8.RuneCountInString(c.TargetText) > MaxTextRunes {
		return c, false
	}
	return c, true
}

// CleanText removes invisible and control characters, collapses runs of
// whitespace to a single space and trims. NFC is applied last so a base
// letter and a combining mark that were split by a removed character compose.
func CleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for i, r := range s {
		switch {
		case r == zeroWidthJoiner:
			// Kept only inside emoji sequences, where it changes the glyph.
			next, _ := utf8.DecodeRuneInString(s[i+utf8.RuneLen(r):])
			if !isEmojiPart(prev) || !isEmojiPart(next) {
				continue
			}
		case isInvisible(r):
			continue
		case unicode.IsSpace(r):
			r = ' '
		case unicode.IsControl(r):
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return norm.NFC.String(strings.Join(strings.Fields(b.String()), " "))
}

const zeroWidthJoiner = '\u200d'

// isInvisible reports format characters that pages leave in text: zero-width
// spaces, the soft hyphen, bidi marks, embeddings and isolates, and the BOM.
func isInvisible(r rune) bool {
	switch {
	case r == '\u00ad', r == '\u061c', r == '\u180e', r == '\ufeff':
		return true
	case r >= '\u200b' && r <= '\u200f':
		return true
	case r >= '\u202a' && r <= '\u202e':
		return true
	case r >= '\u2060' && r <= '\u2064':
		return true
	case r >= '\u2066' && r <= '\u2069':
		return true
	}
	return false
}

// isEmojiPart reports runes a zero-width joiner may link: pictographs,
// the emoji presentation selector and skin tone modifiers.
func isEmojiPart(r rune) bool {
	return unicode.Is(unicode.So, r) || r == '\ufe0f' || (r >= 0x1f3fb && r <= 0x1f3ff)
}

// NormalizeLanguage canonicalises a BCP 47-ish language code.
// "EN_us" becomes "en-US", "zh-hant" becomes "zh-Hant"; anything that does
// not start with a two or three letter primary subtag becomes "und".
func NormalizeLanguage(code string) string {
	code = strings.TrimSpace(strings.ReplaceAll(code, "_", "-"))
	if code == "" {
		return domain.UndeterminedLanguage
	}

	parts := strings.Split(strings.ToLower(code), "-")
	if !isAlpha(parts[0]) || len(parts[0]) < 2 || len(parts[0]) > 3 {
		return domain.UndeterminedLanguage
	}

	out := []string{parts[0]}
	for _, p := range parts[1:] {
		switch {
		case len(p) == 4 && isAlpha(p):
			out = append(out, strings.ToUpper(p[:1])+p[1:])
		case len(p) == 2 && isAlpha(p):
			out = append(out, strings.ToUpper(p))
		case len(p) == 3 && isDigits(p):
			out = append(out, p)
		default:
			return domain.UndeterminedLanguage
		}
	}
	return strings.Join(out, "-")
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
