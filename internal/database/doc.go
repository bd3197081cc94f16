// Package database provides SQLite-based history storage for sitectl.
//
// This package implements the HistoryDB, which stores:
//   - Audit summaries for comparing audits of the same site over time
//   - Verify and submit run records
//   - The last known state of every audited page
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. WAL mode provides good concurrent read performance
package database
