// Package sqlite stores snapshot documents in a single SQLite table using
// the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agentstation/utc"
	_ "modernc.org/sqlite"

	"github.com/agentstation/promptradar/internal/store"
	"github.com/agentstation/promptradar/pkg/constants"
	"github.com/agentstation/promptradar/pkg/errors"
	"github.com/agentstation/promptradar/pkg/logging"
)

const backend = "sqlite"

// Store keeps one row per document key.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapResource("open", "store", path, err)
	}
	// one writer at a time; the store is written once per run
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.WrapResource("open", "store", path, err)
	}
	if err := s.runMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, errors.WrapResource("migrate", "store", path, err)
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Read decodes the document stored under key into dst.
func (s *Store) Read(ctx context.Context, key string, dst any) error {
	if err := store.ValidKey(key); err != nil {
		return err
	}

	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE key = ?`, key).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("document", key)
		}
		return errors.WrapStore("read", backend, key, err)
	}
	if err := store.Decode([]byte(body), dst); err != nil {
		return errors.WrapStore("read", backend, key, errors.WrapParse("json", key, err))
	}
	return nil
}

// Write upserts the document under key.
func (s *Store) Write(ctx context.Context, key string, doc any) error {
	if err := store.ValidKey(key); err != nil {
		return err
	}

	data, err := store.Encode(doc)
	if err != nil {
		return errors.WrapStore("write", backend, key, err)
	}

	const query = `
		INSERT INTO documents (key, body, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, string(data), utc.Now().Time.Format(time.RFC3339Nano)); err != nil {
		return errors.WrapStore("write", backend, key, err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.WrapResource("close", "store", s.path, err)
	}
	return nil
}

type migration struct {
	version int
	name    string
	up      string
}

var migrations = []migration{
	{
		version: 1,
		name:    "documents",
		up: `CREATE TABLE IF NOT EXISTS documents (
			key TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	},
}

// runMigrations applies every migration newer than the recorded version.
func (s *Store) runMigrations(ctx context.Context) error {
	const createTable = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version); err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		logging.FromContext(ctx).Debug().Int("version", m.version).Str("name", m.name).Msg("Applying store migration")
		if _, err := s.db.ExecContext(ctx, m.up); err != nil {
			return fmt.Errorf("migration %d failed: %w", m.version, err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.version, m.name); err != nil {
			return err
		}
	}
	return nil
}
