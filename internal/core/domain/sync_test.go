package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSheetID = "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"

func TestParseSpreadsheetID(t *testing.T) {
	valid := []string{
		testSheetID,
		"  " + testSheetID + "\n",
		"https://docs.google.com/spreadsheets/d/" + testSheetID,
		"https://docs.google.com/spreadsheets/d/" + testSheetID + "/edit#gid=0",
		"https://docs.google.com/spreadsheets/d/" + testSheetID + "/edit?usp=sharing",
		"https://docs.google.com/spreadsheets/u/1/d/" + testSheetID + "/edit",
		"docs.google.com/spreadsheets/d/" + testSheetID,
		"docs.google.com/spreadsheets/u/0/d/" + testSheetID + "/edit#gid=0",
		"HTTPS://Docs.Google.com/spreadsheets/d/" + testSheetID,
	}
	for _, in := range valid {
		t.Run(in, func(t *testing.T) {
			id, err := ParseSpreadsheetID(in)
			require.NoError(t, err)
			assert.Equal(t, testSheetID, id)
		})
	}
}

func TestParseSpreadsheetID_Invalid(t *testing.T) {
	invalid := []string{
		"",
		"short",
		"has spaces in the middle of it okay",
		"https://example.com/spreadsheets/d/" + testSheetID,
		"https://docs.google.com/document/d/" + testSheetID,
		"https://docs.google.com/spreadsheets/d/short/edit",
		"https://docs.google.com/spreadsheets/u/1/" + testSheetID,
		"example.com/spreadsheets/d/" + testSheetID,
	}
	for _, in := range invalid {
		t.Run(in, func(t *testing.T) {
			_, err := ParseSpreadsheetID(in)
			assert.ErrorIs(t, err, ErrInvalidSpreadsheetID)
		})
	}
}

func TestSyncTarget(t *testing.T) {
	assert.Equal(t, "abc/Starred Words", SyncTarget("abc", "Starred Words"))
}

func TestRowFromWord(t *testing.T) {
	w := StarredWord{ID: "x", SourceText: "a", TargetText: "b", SourceLang: "en", TargetLang: "de"}
	row := RowFromWord(w)
	assert.Equal(t, SheetRow{SourceLang: "en", SourceText: "a", TargetLang: "de", TargetText: "b"}, row)
	assert.Len(t, SheetHeader, 5)
}
