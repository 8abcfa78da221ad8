package domain

import (
	"net/url"
	"regexp"
	"strings"
	"time"
)

// SyncState tracks export progress for one spreadsheet destination.
type SyncState struct {
	// Target is "<spreadsheet-id>/<sheet-name>".
	Target string

	// LastSync is when the last successful export completed.
	LastSync time.Time

	// RowsWritten is the number of rows written by the last export.
	RowsWritten int

	// Mode is the sync mode used by the last export.
	Mode SyncMode
}

// SyncTarget builds the key under which SyncState is stored.
func SyncTarget(spreadsheetID, sheetName string) string {
	return spreadsheetID + "/" + sheetName
}

// SheetRow is one exported spreadsheet row.
type SheetRow struct {
	SourceLang string
	SourceText string
	TargetLang string
	TargetText string
	FirstSeen  time.Time
}

// SheetHeader is the header row written to a new or empty sheet.
var SheetHeader = []string{"Source Language", "Source Text", "Target Language", "Target Text", "First Seen"}

// RowFromWord converts a stored word into a sheet row.
func RowFromWord(w StarredWord) SheetRow {
	return SheetRow{
		SourceLang: w.SourceLang,
		SourceText: w.SourceText,
		TargetLang: w.TargetLang,
		TargetText: w.TargetText,
		FirstSeen:  w.FirstSeen,
	}
}

// SyncReport summarises one export.
type SyncReport struct {
	SpreadsheetID string
	SheetName     string
	Mode          SyncMode
	RowsWritten   int
	Retries       int
	Duration      time.Duration
}

var spreadsheetIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{20,}$`)

// ParseSpreadsheetID extracts the spreadsheet ID from a bare ID or a
// docs.google.com/spreadsheets/d/<id> URL. The scheme may be left off, and
// multi-account links (/spreadsheets/u/<n>/d/<id>) are accepted.
// Returns ErrInvalidSpreadsheetID if neither form matches.
func ParseSpreadsheetID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if spreadsheetIDPattern.MatchString(input) {
		return input, nil
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}
	u, err := url.Parse(input)
	if err != nil || !strings.EqualFold(u.Hostname(), "docs.google.com") {
		return "", ErrInvalidSpreadsheetID
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part != "spreadsheets" {
			continue
		}
		j := i + 1
		if j+1 < len(parts) && parts[j] == "u" {
			j += 2
		}
		if j+1 < len(parts) && parts[j] == "d" && spreadsheetIDPattern.MatchString(parts[j+1]) {
			return parts[j+1], nil
		}
	}
	return "", ErrInvalidSpreadsheetID
}
