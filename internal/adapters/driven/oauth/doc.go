// Package oauth implements the Google identity provider used for spreadsheet
// export: PKCE authorisation code flow, token refresh and account lookup.
package oauth
