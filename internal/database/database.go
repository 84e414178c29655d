package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-cleaner/internal/logging"
	"media-cleaner/internal/metrics"
)

// Default timeout for cache operations
const defaultTimeout = 5 * time.Second

// schemaVersion is the current cache schema version. Version 1 stored only
// blur_score, phash and video_hash; version 2 added face_count,
// video_duration and video_frame_hash.
const schemaVersion = 2

// Database manages the feature cache store for the scan engine.
type Database struct {
	db     *sql.DB
	dbPath string
}

// New opens (or creates) the feature cache at dbPath and brings its schema
// up to the current version. The parent directory must exist and be
// writable. Callers that cannot open the cache should continue with a nil
// *Database; every lookup then behaves as a miss.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Feature cache path: %s", dbPath)

	// WAL mode and busy_timeout prevent "database is locked" errors when a
	// host polls the cache while a scan writes to it.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open feature cache: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close cache after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to feature cache: %w", err)
	}

	// One scan at a time writes; keep the pool small.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close cache after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	logging.Info("Feature cache ready at %s (schema v%d)", dbPath, schemaVersion)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS media_cache (
		file_path TEXT PRIMARY KEY,
		last_modified REAL,
		file_size INTEGER,
		blur_score REAL,
		phash TEXT,
		video_hash TEXT,
		face_count INTEGER,
		video_duration REAL,
		video_frame_hash TEXT
	);

	CREATE TABLE IF NOT EXISTS schema_info (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);
	`

	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return err
	}

	return d.runMigrations(ctx)
}

// runMigrations upgrades a pre-existing store created under an older schema
// version. Migrations are additive only: columns are added with NULL
// defaults and existing rows keep their original values.
func (d *Database) runMigrations(ctx context.Context) error {
	stored, err := d.storedSchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if stored < schemaVersion {
		// The version marker can lag behind the actual table shape (v1
		// stores had no marker at all), so each column is checked
		// individually before being added.
		newColumns := []struct {
			name    string
			sqlType string
		}{
			{"face_count", "INTEGER"},
			{"video_duration", "REAL"},
			{"video_frame_hash", "TEXT"},
		}

		for _, col := range newColumns {
			exists, err := d.columnExists(ctx, col.name)
			if err != nil {
				return fmt.Errorf("failed to check for %s column: %w", col.name, err)
			}
			if exists {
				continue
			}

			logging.Info("Migrating feature cache: adding %s column", col.name)
			query := fmt.Sprintf("ALTER TABLE media_cache ADD COLUMN %s %s", col.name, col.sqlType)
			if _, err := d.db.ExecContext(ctx, query); err != nil {
				return fmt.Errorf("failed to add %s column: %w", col.name, err)
			}
		}
	}

	_, err = d.db.ExecContext(ctx,
		`INSERT INTO schema_info (key, value) VALUES ('version', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		schemaVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return nil
}

// storedSchemaVersion returns the schema version recorded in the store, or
// 1 when no marker exists (stores predating the marker).
func (d *Database) storedSchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := d.db.QueryRowContext(ctx,
		"SELECT value FROM schema_info WHERE key = 'version'",
	).Scan(&version)
	if err == sql.ErrNoRows {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

func (d *Database) columnExists(ctx context.Context, column string) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*) > 0
		FROM pragma_table_info('media_cache')
		WHERE name = ?
	`, column).Scan(&exists)
	return exists, err
}

// Close closes the cache store.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	return d.db.Close()
}

// Path returns the location of the cache store file.
func (d *Database) Path() string {
	return d.dbPath
}

// recordQuery records feature cache query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}
