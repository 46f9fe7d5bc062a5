// Package files stores snapshot documents as JSON files in a directory,
// one file per key, replaced atomically.
package files

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/agentstation/promptradar/internal/store"
	"github.com/agentstation/promptradar/pkg/constants"
	"github.com/agentstation/promptradar/pkg/errors"
)

const backend = "files"

// Store keeps documents under dir as <key>.json.
type Store struct {
	dir string
}

// New returns a Store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the file that holds key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Read decodes the document stored under key into dst.
func (s *Store) Read(ctx context.Context, key string, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidKey(key); err != nil {
		return err
	}

	path := s.Path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errors.NewNotFoundError("document", key)
		}
		return errors.WrapStore("read", backend, key, errors.WrapIO("read", path, err))
	}
	if err := store.Decode(data, dst); err != nil {
		return errors.WrapStore("read", backend, key, errors.WrapParse("json", path, err))
	}
	return nil
}

// Write replaces the document under key. The new file is written beside the
// old one and renamed over it, so readers see either version whole.
func (s *Store) Write(ctx context.Context, key string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidKey(key); err != nil {
		return err
	}

	data, err := store.Encode(doc)
	if err != nil {
		return errors.WrapStore("write", backend, key, err)
	}

	tempFile, err := os.CreateTemp(s.dir, key+"-*.json.tmp")
	if err != nil {
		return errors.WrapStore("write", backend, key, errors.WrapIO("create", s.dir, err))
	}
	tempPath := tempFile.Name()
	cleanup := func(op string, err error) error {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return errors.WrapStore("write", backend, key, errors.WrapIO(op, tempPath, err))
	}

	if _, err := tempFile.Write(data); err != nil {
		return cleanup("write", err)
	}
	if err := tempFile.Sync(); err != nil {
		return cleanup("sync", err)
	}
	if err := tempFile.Chmod(constants.FilePermissions); err != nil {
		return cleanup("chmod", err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapStore("write", backend, key, errors.WrapIO("close", tempPath, err))
	}
	if err := os.Rename(tempPath, s.Path(key)); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapStore("write", backend, key, errors.WrapIO("rename", s.Path(key), err))
	}
	return nil
}

// Close is a no-op; files hold no open handles between calls.
func (s *Store) Close() error {
	return nil
}
