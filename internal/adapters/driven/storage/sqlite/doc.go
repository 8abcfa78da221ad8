// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements several store interfaces
// through a single database connection:
//
//   - WordStore: Starred word persistence, in page order
//   - SyncStateStore: Spreadsheet export progress
//   - CredentialsStore: OAuth tokens
//   - SchedulerStore: Background task state and history
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each applied version is recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.starsync/data/starsync.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. SQLite runs in WAL mode so the
// daemon can write while CLI commands read.
package sqlite
