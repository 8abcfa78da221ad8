// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Browser / BrowserTab: Hosts the saved-words page in a hidden tab
//   - PageExtractor: Reads starred words out of a page snapshot
//   - WordStore: Starred word persistence
//   - ConfigStore: Application configuration
//   - SchedulerStore: Scheduled task persistence
//
// # Optional Interfaces
//
// These can be nil - spreadsheet export is disabled without them:
//
//   - SpreadsheetClient: Writes rows to the remote spreadsheet
//   - TokenProvider: Supplies OAuth access tokens
//   - CredentialsStore: OAuth token persistence
//   - SyncStateStore: Export progress persistence
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
