// Package storage provides the local persistence tier: a small key/value
// capability with SQLite, Redis and in-memory backends.
package storage

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by Load when the key has no value
var ErrNotFound = errors.New("key not found")

// KV is the capability the settings store depends on
type KV interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// Pruner is implemented by backends that can drop entries older than a cutoff
type Pruner interface {
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}

// MemoryKV keeps values in process memory. It does not survive restarts
// and is meant for tests and the "memory" cache backend.
type MemoryKV struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	updatedAt time.Time
}

// NewMemoryKV creates an empty in-memory store
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{entries: make(map[string]memoryEntry), now: time.Now}
}

// Load returns a copy of the stored value
func (m *MemoryKV) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

// Save overwrites the value for key
func (m *MemoryKV) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: append([]byte(nil), value...), updatedAt: m.now()}
	return nil
}

// Prune removes entries last written before olderThan
func (m *MemoryKV) Prune(_ context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, e := range m.entries {
		if e.updatedAt.Before(olderThan) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored keys
func (m *MemoryKV) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
