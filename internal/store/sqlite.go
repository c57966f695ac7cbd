package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/beccaroth/muse/internal/dates"
	"github.com/beccaroth/muse/internal/types"
	_ "modernc.org/sqlite"
)

// SQLiteStore is the SQLite-backed persistence layer.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore instance.
// It initializes the database with WAL mode, applies pragmas, and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable pragmas for performance and safety
	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	// Run goose migrations
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// enablePragmas sets SQLite pragmas for optimal performance and safety.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetStats returns aggregate entity counts.
func (s *SQLiteStore) GetStats(ctx context.Context) (*types.StoreStats, error) {
	var stats types.StoreStats
	row := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM projects),
			(SELECT COUNT(*) FROM seeds),
			(SELECT COUNT(*) FROM tasks),
			(SELECT COUNT(*) FROM twelve_week_cycles)
	`)
	if err := row.Scan(&stats.ProjectCount, &stats.SeedCount, &stats.TaskCount, &stats.CycleCount); err != nil {
		return nil, fmt.Errorf("scan stats: %w", err)
	}
	return &stats, nil
}

// --- Shared scan helpers ---

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface{ Scan(...any) error }

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullDate converts a nullable TEXT column to a *dates.Date.
func nullDate(ns sql.NullString) (*dates.Date, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	d, err := dates.Parse(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// dateArg converts an optional date to its TEXT column value.
func dateArg(d *dates.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}
