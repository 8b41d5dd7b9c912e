/*
Package db owns the client's durable local state: a single-user SQLite file holding the
persisted session under fixed keys and a ledger of exported images.

The schema is managed with goose migrations embedded in the binary.
*/
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"zimage/internal/pkg/logx"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const (
	// busyRetries is how many times a write is retried while another process holds the lock.
	busyRetries = 3

	busyBackoff = 50 * time.Millisecond
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Store is the SQLite-backed key/value and export ledger.
type Store struct {
	db *sqlx.DB
}

// ExportRecord is one row of the export ledger.
type ExportRecord struct {
	ID         int64  `db:"id" json:"id"`
	JobID      string `db:"job_id" json:"job_id"`
	Sink       string `db:"sink" json:"sink"`
	Location   string `db:"location" json:"location"`
	Bytes      int64  `db:"bytes" json:"bytes"`
	ExportedAt int64  `db:"exported_at" json:"exported_at"`
}

// Time returns the export timestamp.
func (r ExportRecord) Time() time.Time {
	return time.Unix(r.ExportedAt, 0)
}

// Open creates the parent directory if needed, opens the database at path and applies pending migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}

	// One writer at a time keeps SQLite from tripping over itself inside a single process.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping local database: %w", err)
	}

	if err := runMigrations(conn.DB); err != nil {
		conn.Close()
		return nil, err
	}

	return &Store{db: conn}, nil
}

// runMigrations applies all pending migrations from the embedded file system.
func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logx.Debug("Local database migrations applied")
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key and whether it exists.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.write(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value)
		return err
	})
}

// Delete removes every given key. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`DELETE FROM kv WHERE key IN (?)`, keys)
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	return s.write(ctx, func() error {
		_, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
		return err
	})
}

// RecordExport appends an entry to the export ledger.
func (s *Store) RecordExport(ctx context.Context, rec ExportRecord) error {
	if rec.ExportedAt == 0 {
		rec.ExportedAt = time.Now().Unix()
	}

	return s.write(ctx, func() error {
		_, err := s.db.NamedExecContext(ctx,
			`INSERT INTO exports (job_id, sink, location, bytes, exported_at)
			 VALUES (:job_id, :sink, :location, :bytes, :exported_at)`,
			rec)
		return err
	})
}

// Exports lists the ledger, newest first. An empty jobID lists everything.
func (s *Store) Exports(ctx context.Context, jobID string) ([]ExportRecord, error) {
	query := `SELECT id, job_id, sink, location, bytes, exported_at FROM exports`
	var args []any
	if jobID != "" {
		query += ` WHERE job_id = ?`
		args = append(args, jobID)
	}
	query += ` ORDER BY exported_at DESC, id DESC`

	var records []ExportRecord
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	return records, nil
}

// write runs fn, retrying while another process holds the database lock.
func (s *Store) write(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= busyRetries; attempt++ {
		if err = fn(); err == nil || !IsBusy(err) {
			return err
		}

		logx.Warn("Local database is busy, retrying", "attempt", attempt+1)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(busyBackoff * time.Duration(attempt+1)):
		}
	}
	return fmt.Errorf("local database stayed locked: %w", err)
}
