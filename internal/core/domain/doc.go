// Package domain defines the core business entities for starsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - StarredWord: A saved source/translation pair, as stored locally
//   - RawWord: An unvalidated pair exactly as scraped from the page
//   - ExtractionResult: The outcome of one page extraction
//   - Settings: Application settings read from the config store
//   - ScheduledTask: A recurring background task
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
package domain
