// Package memory provides in-process implementations of driven ports, used by
// tests and when no durable storage is wanted.
package memory

import (
	"context"
	"sync"

	"github.com/ericfisherdev/stockpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.KVStore = (*KVStore)(nil)

// KVStore is a map-backed driven.KVStore. Values are copied on the way in and
// out so callers cannot mutate stored payloads.
type KVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewKVStore creates an empty KVStore.
func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string][]byte)}
}

// Load returns a copy of the value for key, or (nil, nil) if absent.
func (s *KVStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

// Save replaces the value for key.
func (s *KVStore) Save(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key. No-op if absent.
func (s *KVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
