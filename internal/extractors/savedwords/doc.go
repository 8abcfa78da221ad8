// Package savedwords extracts starred words from the saved-translations page.
//
// The page markup changes without notice, so extraction walks a prioritised
// list of selector strategies and stops at the first one that yields at
// least one pair:
//
//   - primary: saved-item containers with explicit source and target nodes
//   - secondary: list or table rows with two text cells
//   - emergency: any sibling pair of elements carrying lang attributes
//
// The result names the strategy that matched so drifting markup shows up in
// logs before the primary selectors stop working entirely.
package savedwords
