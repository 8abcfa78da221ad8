package domain

import "time"

// DefaultSavedWordsURL is the page that lists the user's saved translations.
const DefaultSavedWordsURL = "https://translate.google.com/saved"

// SyncMode controls how words are written to the spreadsheet.
type SyncMode string

// Available sync modes.
const (
	// SyncAppend writes only words that have not been exported yet.
	SyncAppend SyncMode = "append"

	// SyncReplace clears the sheet and rewrites every stored word.
	SyncReplace SyncMode = "replace"
)

// Bounds accepted for extraction settings.
const (
	MaxExtractionAttempts = 10
	MinExtractionInterval = time.Minute
)

// IsValid returns true if the sync mode is recognised.
func (m SyncMode) IsValid() bool {
	return m == SyncAppend || m == SyncReplace
}

// String returns the string representation.
func (m SyncMode) String() string {
	return string(m)
}

// AppSettings holds all application settings.
type AppSettings struct {
	Extraction ExtractionSettings
	Dedupe     DedupeMode
	Sheets     SheetsSettings
	OAuth      OAuthAppSettings
}

// ExtractionSettings configures the page extraction pipeline.
type ExtractionSettings struct {
	// URL is the saved-words page to scrape.
	URL string

	// MaxAttempts is how many times the whole extraction is tried.
	MaxAttempts int

	// Timeout bounds one attempt, from opening the tab to receiving the result.
	Timeout time.Duration

	// Interval is how often the scheduler runs an extraction.
	Interval time.Duration

	// BrowserBin is an optional path to a Chrome/Chromium binary.
	BrowserBin string

	// Headless hides the browser window. Defaults to true.
	Headless bool

	// UserDataDir is the browser profile holding the page's login session.
	UserDataDir string
}

// SheetsSettings configures the spreadsheet export.
type SheetsSettings struct {
	// SpreadsheetID is the user-supplied destination identifier (ID or URL).
	SpreadsheetID string

	// SheetName is the tab inside the spreadsheet to write to.
	SheetName string

	// Mode selects append or replace.
	Mode SyncMode

	// AutoSync exports after every scheduled extraction.
	AutoSync bool
}

// IsConfigured returns true if a destination has been set.
func (s SheetsSettings) IsConfigured() bool {
	return s.SpreadsheetID != ""
}

// OAuthAppSettings holds the installed-app OAuth client.
type OAuthAppSettings struct {
	ClientID     string
	ClientSecret string
}

// IsConfigured returns true if a client ID is present.
func (s OAuthAppSettings) IsConfigured() bool {
	return s.ClientID != ""
}

// DefaultAppSettings returns sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Extraction: ExtractionSettings{
			URL:         DefaultSavedWordsURL,
			MaxAttempts: 3,
			Timeout:     30 * time.Second,
			Interval:    30 * time.Minute,
			Headless:    true,
		},
		Dedupe: DedupeExact,
		Sheets: SheetsSettings{
			SheetName: "Starred Words",
			Mode:      SyncAppend,
		},
	}
}
