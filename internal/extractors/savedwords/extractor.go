package savedwords

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/starsync/internal/core/domain"
	"github.com/custodia-labs/starsync/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.PageExtractor = (*Extractor)(nil)

// Sign-in prompts shown instead of the saved list when the session has expired.
const signInSelector = "a[href*='accounts.google.com/ServiceLogin'], " +
	"a[href*='accounts.google.com/signin'], [data-signin-prompt]"

// Extractor reads starred words from the saved-translations page.
type Extractor struct {
	strategies []strategy
	now        func() time.Time
}

// New creates an extractor with the default strategy order.
func New() *Extractor {
	return &Extractor{
		strategies: defaultStrategies(),
		now:        time.Now,
	}
}

// Extract parses html and returns the pairs found by the first matching strategy.
// It never returns an error value; failures are reported in the result.
func (e *Extractor) Extract(html, pageURL string) domain.ExtractionResult {
	result := domain.ExtractionResult{
		PageURL:     pageURL,
		ExtractedAt: e.now(),
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		result.Error = "parse page: " + err.Error()
		return result
	}

	for _, s := range e.strategies {
		words := s.find(doc)
		if len(words) == 0 {
			continue
		}
		result.Words = words
		result.Strategy = s.name
		return result
	}

	if doc.Find(signInSelector).Length() > 0 {
		result.SignInRequired = true
		result.Error = domain.ErrAuthRequired.Error()
		return result
	}

	result.Error = domain.ErrNoWordsFound.Error()
	return result
}

// Strategies returns the strategy names in priority order.
func (e *Extractor) Strategies() []string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.name
	}
	return names
}
