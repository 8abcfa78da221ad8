package domain

import "time"

// ExtractionResult is what one extraction run against the page reports back.
type ExtractionResult struct {
	// Words are the pairs found on the page, unvalidated.
	Words []RawWord `json:"words"`

	// Strategy names the selector strategy that produced Words.
	Strategy string `json:"strategy,omitempty"`

	// PageURL is the URL the page ended up on after navigation.
	PageURL string `json:"page_url,omitempty"`

	// ExtractedAt is when the DOM was read.
	ExtractedAt time.Time `json:"extracted_at"`

	// Error is set when the page could be read but yielded nothing usable.
	Error string `json:"error,omitempty"`

	// SignInRequired is set when the page shows a sign-in prompt instead of saved words.
	SignInRequired bool `json:"sign_in_required,omitempty"`
}

// Success returns true if the result carries words and no error.
func (r *ExtractionResult) Success() bool {
	return r.Error == "" && len(r.Words) > 0
}

// ExtractionReport summarises one full pipeline run (extract, clean, merge).
type ExtractionReport struct {
	// Attempts is how many extraction attempts were made.
	Attempts int

	// Strategy names the selector strategy that matched.
	Strategy string

	// Found is the number of raw pairs scraped.
	Found int

	// Discarded is the number of pairs rejected by validation.
	Discarded int

	// Duplicates is the number of pairs removed as duplicates within the page.
	Duplicates int

	// Added is the number of words new to the store.
	Added int

	// Total is the number of words stored after the merge.
	Total int

	// StartedAt is when the run started.
	StartedAt time.Time

	// Duration is how long the run took.
	Duration time.Duration
}
