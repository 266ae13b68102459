// Package database stores crawl run history in SQLite so past runs can be
// listed and compared without re-reading manifest files scattered across
// output directories.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/siteclone/siteclone/internal/model"
)

// dbFileName is the SQLite database file inside the data directory.
const dbFileName = "siteclone.db"

// HistoryDB provides SQLite-based storage for crawl run history.
// It manages connection pooling and owns the schema.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is
// returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

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

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
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

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Runs store one row per crawl run, mirroring the manifest
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target_url TEXT NOT NULL,
		base_host TEXT NOT NULL,
		max_pages INTEGER NOT NULL,
		max_depth INTEGER NOT NULL,
		pages_crawled INTEGER NOT NULL,
		output_dir TEXT NOT NULL,
		status TEXT NOT NULL,
		stop_reason TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_host ON runs(base_host);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Run pages store the canonical URL of every persisted page, in crawl order
	CREATE TABLE IF NOT EXISTS run_pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		UNIQUE(run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_run_pages_run ON run_pages(run_id);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is one stored crawl run.
type RunRecord struct {
	ID           int64
	TargetURL    string
	BaseHost     string
	MaxPages     int
	MaxDepth     int
	PagesCrawled int
	OutputDir    string
	Status       model.Status
	StopReason   model.StopReason
	StartedAt    time.Time
	FinishedAt   time.Time
}

// RecordRun stores a finished run and its crawled URLs. The run row and its
// pages are written in one transaction so history never shows a run with a
// partial page list.
func (hdb *HistoryDB) RecordRun(ctx context.Context, m *model.CrawlManifest) (int64, error) {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (target_url, base_host, max_pages, max_depth, pages_crawled,
		output_dir, status, stop_reason, started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.TargetURL,
		m.BaseHost,
		m.MaxPages,
		m.MaxDepth,
		m.PagesCrawled,
		m.OutputDir,
		m.Status.String(),
		m.StopReason.String(),
		m.StartedAt.UTC().Format(time.RFC3339),
		m.FinishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	for i, u := range m.CrawledURLs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_pages (run_id, position, url) VALUES (?, ?, ?)`,
			runID, i, u,
		); err != nil {
			return 0, fmt.Errorf("failed to insert run page: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// ListRuns returns stored runs, newest first. An empty host returns runs for
// all hosts.
func (hdb *HistoryDB) ListRuns(ctx context.Context, host string) ([]RunRecord, error) {
	query := `
	SELECT id, target_url, base_host, max_pages, max_depth, pages_crawled,
		output_dir, status, stop_reason, started_at, finished_at
	FROM runs
	`
	args := make([]any, 0, 1)
	if host != "" {
		query += " WHERE base_host = ?"
		args = append(args, host)
	}
	query += " ORDER BY started_at DESC, id DESC"

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var results []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}

	return results, rows.Err()
}

// LatestRun returns the most recent run for host, or nil when the host has
// never been crawled.
func (hdb *HistoryDB) LatestRun(ctx context.Context, host string) (*RunRecord, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT id, target_url, base_host, max_pages, max_depth, pages_crawled,
		output_dir, status, stop_reason, started_at, finished_at
	FROM runs
	WHERE base_host = ?
	ORDER BY started_at DESC, id DESC
	LIMIT 1
	`, host)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	rec, err := scanRun(rows)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetRunPages returns the canonical URLs persisted by a run, in crawl order.
func (hdb *HistoryDB) GetRunPages(ctx context.Context, runID int64) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT url FROM run_pages
	WHERE run_id = ?
	ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run pages: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan run page: %w", err)
		}
		urls = append(urls, u)
	}

	return urls, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for scanRun.
type scanner interface {
	Scan(dest ...any) error
}

// scanRun reads one runs row.
func scanRun(s scanner) (RunRecord, error) {
	var rec RunRecord
	var status, stopReason, startedAt, finishedAt string

	err := s.Scan(
		&rec.ID,
		&rec.TargetURL,
		&rec.BaseHost,
		&rec.MaxPages,
		&rec.MaxDepth,
		&rec.PagesCrawled,
		&rec.OutputDir,
		&status,
		&stopReason,
		&startedAt,
		&finishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, err
	}
	if err != nil {
		return rec, fmt.Errorf("failed to scan run: %w", err)
	}

	rec.Status = model.Status(status)
	rec.StopReason = model.StopReason(stopReason)
	rec.StartedAt = parseTimestamp(startedAt)
	rec.FinishedAt = parseTimestamp(finishedAt)
	return rec, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05", // SQLite default datetime format
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on
// configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
