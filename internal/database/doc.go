// Package database provides SQLite-based storage for crawl results.
//
// This package implements the CrawlDB, which stores:
//   - Crawl runs identified by a unique run ID
//   - Visited URLs with their metadata, in discovery order
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// Persistence is optional: the crawler itself keeps its frontier in memory,
// and the database only records completed (or interrupted) runs so that
// sitemaps can be regenerated later without re-crawling.
package database
