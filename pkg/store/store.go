// Package store is the snapshot store contract: whole-document reads and
// writes keyed by document name, with interchangeable backends.
package store

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/agentstation/promptradar/internal/store/bolt"
	"github.com/agentstation/promptradar/internal/store/files"
	"github.com/agentstation/promptradar/internal/store/memory"
	"github.com/agentstation/promptradar/internal/store/sqlite"
	"github.com/agentstation/promptradar/pkg/constants"
	"github.com/agentstation/promptradar/pkg/errors"
	"github.com/agentstation/promptradar/pkg/logging"
)

// Store reads and writes whole documents.
//
// Read returns an error matching errors.ErrNotFound when key has never been
// written. Write fully replaces the document and is durable on return.
type Store interface {
	Read(ctx context.Context, key string, dst any) error
	Write(ctx context.Context, key string, doc any) error
	Close() error
}

// Backend names a Store implementation.
type Backend string

// Available backends.
const (
	BackendFiles  Backend = "files"
	BackendSQLite Backend = "sqlite"
	BackendBolt   Backend = "bolt"
	BackendMemory Backend = "memory"
)

// Backends lists the backends Open accepts.
func Backends() []Backend {
	return []Backend{BackendFiles, BackendSQLite, BackendBolt, BackendMemory}
}

// ParseBackend resolves a backend name, defaulting to files when empty.
func ParseBackend(name string) (Backend, error) {
	if name == "" {
		return Backend(constants.DefaultStoreBackend), nil
	}
	b := Backend(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Backends() {
		if b == known {
			return b, nil
		}
	}
	return "", errors.NewValidationError("store", name, "unknown backend (want files, sqlite, bolt or memory)")
}

// Database file names inside the data directory.
const (
	SQLiteFile = "promptradar.db"
	BoltFile   = "promptradar.bolt"
)

// Open returns the backend's Store rooted at dataDir.
func Open(ctx context.Context, backend Backend, dataDir string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch backend {
	case BackendFiles, "":
		s, err = openFiles(dataDir)
	case BackendSQLite:
		s, err = openSQLite(ctx, filepath.Join(dataDir, SQLiteFile))
	case BackendBolt:
		s, err = openBolt(filepath.Join(dataDir, BoltFile))
	case BackendMemory:
		s = memory.New()
	default:
		err = errors.NewValidationError("store", string(backend), "unknown backend")
	}
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug().Str("backend", string(backend)).Str("data_dir", dataDir).Msg("Opened snapshot store")
	return s, nil
}

func openFiles(dir string) (Store, error) {
	s, err := files.New(dir)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openSQLite(ctx context.Context, path string) (Store, error) {
	s, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openBolt(path string) (Store, error) {
	s, err := bolt.Open(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ReadOrDefault reads key into a fresh value from def. A missing document or
// any read or decode error yields def() instead; errors are logged and the
// run proceeds as if it were the first.
func ReadOrDefault[T any](ctx context.Context, s Store, key string, def func() *T) *T {
	v := def()
	err := s.Read(ctx, key, v)
	if err == nil {
		return v
	}

	logger := logging.FromContext(ctx)
	if errors.IsNotFound(err) {
		logger.Debug().Str("key", key).Msg("No stored document, using defaults")
	} else {
		logger.Warn().Err(err).Str("key", key).Msg("Unreadable stored document, using defaults")
	}
	return def()
}
