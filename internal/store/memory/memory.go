// Package memory is an in-process snapshot store. Documents are kept in
// their encoded form so reads never alias a caller's value.
package memory

import (
	"context"
	"sync"

	"github.com/agentstation/promptradar/internal/store"
	"github.com/agentstation/promptradar/pkg/errors"
)

// Store is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	docs   map[string][]byte
	writes int
}

// New returns an empty Store.
func New() *Store {
	return &Store{docs: make(map[string][]byte)}
}

// Read decodes the document stored under key into dst.
func (s *Store) Read(ctx context.Context, key string, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	data, ok := s.docs[key]
	s.mu.RUnlock()
	if !ok {
		return errors.NewNotFoundError("document", key)
	}
	if err := store.Decode(data, dst); err != nil {
		return errors.WrapStore("read", "memory", key, err)
	}
	return nil
}

// Write replaces the document under key.
func (s *Store) Write(ctx context.Context, key string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidKey(key); err != nil {
		return err
	}
	data, err := store.Encode(doc)
	if err != nil {
		return errors.WrapStore("write", "memory", key, err)
	}
	s.mu.Lock()
	s.docs[key] = data
	s.writes++
	s.mu.Unlock()
	return nil
}

// Raw returns the encoded document under key.
func (s *Store) Raw(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[key]
	return data, ok
}

// Put stores already-encoded data under key, bypassing encoding.
func (s *Store) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = data
}

// Writes returns how many successful writes the store has accepted.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
