// Package extractors provides implementations of the PageExtractor interface.
// An extractor receives a snapshot of a page's DOM and returns the starred
// words it can find, without touching the network or the browser.
package extractors
