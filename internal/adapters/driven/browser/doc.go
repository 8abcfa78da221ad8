// Package browser hosts the saved-words page in a background Chrome tab
// driven through the DevTools protocol with go-rod.
//
// The browser is launched lazily on the first OpenHiddenTab and reuses the
// configured profile directory, so a session signed in once stays signed in.
package browser
