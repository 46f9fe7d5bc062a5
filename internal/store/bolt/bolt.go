// Package bolt stores snapshot documents in a bbolt database, one key per
// document in a single bucket.
package bolt

import (
	"context"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/agentstation/promptradar/internal/store"
	"github.com/agentstation/promptradar/pkg/constants"
	"github.com/agentstation/promptradar/pkg/errors"
)

const backend = "bolt"

var documentsBucket = []byte("documents")

// Store wraps an open bbolt database.
type Store struct {
	db   *bbolt.DB
	path string
}

// Open opens (creating if needed) the database at path. It waits up to
// StoreOpenTimeout for another process to release the file lock.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", filepath.Dir(path), err)
	}

	db, err := bbolt.Open(path, constants.SecureFilePermissions, &bbolt.Options{Timeout: constants.StoreOpenTimeout})
	if err != nil {
		return nil, errors.WrapResource("open", "store", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(documentsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.WrapResource("open", "store", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Read decodes the document stored under key into dst.
func (s *Store) Read(ctx context.Context, key string, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidKey(key); err != nil {
		return err
	}

	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(documentsBucket).Get([]byte(key)); v != nil {
			// v is only valid inside the transaction
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return errors.WrapStore("read", backend, key, err)
	}
	if data == nil {
		return errors.NewNotFoundError("document", key)
	}
	if err := store.Decode(data, dst); err != nil {
		return errors.WrapStore("read", backend, key, errors.WrapParse("json", key, err))
	}
	return nil
}

// Write replaces the document under key in one transaction.
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
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(documentsBucket).Put([]byte(key), data)
	})
	if err != nil {
		return errors.WrapStore("write", backend, key, err)
	}
	return nil
}

// Close releases the database and its file lock.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.WrapResource("close", "store", s.path, err)
	}
	return nil
}
