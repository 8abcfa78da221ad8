// Package sheets writes starred words to a Google Sheets spreadsheet.
//
// Requests are authorised with the TokenProvider on every call so that a
// token invalidated after a 401 is never reused. API errors are mapped to
// domain sentinels (see WrapError) and 429 responses feed a shared rate
// limiter that holds back further requests until the server's retry window
// has passed.
package sheets
