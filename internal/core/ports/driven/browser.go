package driven

import (
	"context"

	"github.com/custodia-labs/starsync/internal/core/domain"
)

// Browser hosts pages in tabs the user never sees.
type Browser interface {
	// OpenHiddenTab creates a new background tab.
	OpenHiddenTab(ctx context.Context) (BrowserTab, error)

	// Close shuts the browser down.
	Close() error
}

// BrowserTab is a single hidden tab.
type BrowserTab interface {
	// Navigate loads url and waits for the page to finish loading.
	Navigate(ctx context.Context, url string) error

	// Inject runs the extractor against the tab's current DOM.
	// Exactly one message is delivered on the returned channel, which is then closed.
	Inject(ctx context.Context, extractor PageExtractor) <-chan TabMessage

	// Close closes the tab.
	Close() error
}

// TabMessage is what an injected extractor sends back from the tab.
type TabMessage struct {
	Result *domain.ExtractionResult
	Err    error
}

// PageExtractor reads starred words from a page's HTML.
type PageExtractor interface {
	Extract(html, pageURL string) domain.ExtractionResult
}
