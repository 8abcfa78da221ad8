// Package auth supplies access tokens for the spreadsheet API from stored
// OAuth credentials, refreshing them shortly before they expire.
package auth
