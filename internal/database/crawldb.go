package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sitespider/internal/model"
)

// CrawlDB provides SQLite-based storage for completed crawl runs.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file holding every run rather
// than one file per crawl. This makes run history queries trivial and keeps
// backup/restore a single-file operation.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "sitespider.db")

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; multiple connections buy nothing here.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Runs record one crawl invocation each
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		hosts TEXT NOT NULL,
		page_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Visits store the ordered URL list of a run
	CREATE TABLE IF NOT EXISTS visits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		last_modified TEXT,
		crawled_at TEXT,
		UNIQUE(run_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_visits_run ON visits(run_id);
	CREATE INDEX IF NOT EXISTS idx_visits_position ON visits(run_id, position);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunMetadata contains summary information about a stored crawl run.
type RunMetadata struct {
	// RunID is the unique identifier assigned by the coordinator.
	RunID string

	// StartedAt is when the run row was written.
	StartedAt time.Time

	// Hosts is the comma-joined allowed host list of the run.
	Hosts string

	// PageCount is the number of visits stored for the run.
	PageCount int
}

// SaveRun stores a completed run and its ordered visit list in a single
// transaction. Saving the same run ID twice replaces the previous rows,
// which covers the re-save after an interrupted crawl resumed output
// generation.
func (cdb *CrawlDB) SaveRun(ctx context.Context, runID, hosts string, entries []model.SitemapEntry) error {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `DELETE FROM visits WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to clear previous visits: %w", err)
	}

	query := `
	INSERT INTO runs (run_id, hosts, page_count)
	VALUES (?, ?, ?)
	ON CONFLICT(run_id) DO UPDATE SET
		hosts = excluded.hosts,
		page_count = excluded.page_count
	`
	if _, err := tx.ExecContext(ctx, query, runID, hosts, len(entries)); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO visits (run_id, position, url, last_modified, crawled_at)
	VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare visit insert: %w", err)
	}
	defer stmt.Close()

	for i, entry := range entries {
		if _, err := stmt.ExecContext(ctx, runID, i, entry.URL, entry.LastModified, entry.CrawledAt); err != nil {
			return fmt.Errorf("failed to insert visit %s: %w", entry.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun retrieves the ordered visit list of a run.
// Returns nil without error when the run is unknown.
func (cdb *CrawlDB) GetRun(ctx context.Context, runID string) ([]model.SitemapEntry, error) {
	query := `
	SELECT url, last_modified, crawled_at
	FROM visits
	WHERE run_id = ?
	ORDER BY position
	`

	rows, err := cdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer rows.Close()

	var entries []model.SitemapEntry
	for rows.Next() {
		var entry model.SitemapEntry
		var lastModified, crawledAt sql.NullString

		if err := rows.Scan(&entry.URL, &lastModified, &crawledAt); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		entry.LastModified = lastModified.String
		entry.CrawledAt = crawledAt.String
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// ListRuns returns metadata for all stored runs, most recent first.
func (cdb *CrawlDB) ListRuns(ctx context.Context) ([]RunMetadata, error) {
	query := `
	SELECT run_id, started_at, hosts, page_count
	FROM runs
	ORDER BY started_at DESC, run_id
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var timestamp string

		if err := rows.Scan(&meta.RunID, &timestamp, &meta.Hosts, &meta.PageCount); err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}
		meta.StartedAt = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// LatestRun returns the metadata of the most recently stored run.
// Returns nil without error when the database holds no runs.
func (cdb *CrawlDB) LatestRun(ctx context.Context) (*RunMetadata, error) {
	query := `
	SELECT run_id, started_at, hosts, page_count
	FROM runs
	ORDER BY started_at DESC, run_id
	LIMIT 1
	`

	var meta RunMetadata
	var timestamp string

	err := cdb.db.QueryRowContext(ctx, query).Scan(&meta.RunID, &timestamp, &meta.Hosts, &meta.PageCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	meta.StartedAt = parseTimestamp(timestamp)
	return &meta, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
