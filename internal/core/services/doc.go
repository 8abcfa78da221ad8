// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The extraction pipeline is split across three files that mirror its steps:
// extraction.go drives the hidden tab with retries, cleaning.go validates and
// normalises what the page returned, and dedupe.go merges the result into the
// stored set. sync.go exports the stored set to the spreadsheet.
package services
