package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store, mainly for tests and single-instance
// deployments without a writable disk.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     Clock
}

// NewMemoryStore returns an empty store stamped by now (time.Now when nil).
func NewMemoryStore(now Clock) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{entries: make(map[string]Entry), now: now}
}

// Get returns a copy of the stored value.
func (s *MemoryStore) Get(_ context.Context, key string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return Entry{Value: append([]byte(nil), entry.Value...), UpdatedAt: entry.UpdatedAt}, nil
}

// Put stores a copy of value.
func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = Entry{Value: append([]byte(nil), value...), UpdatedAt: s.now()}
	return nil
}

// Set stores an entry with an explicit timestamp.
func (s *MemoryStore) Set(key string, value []byte, updatedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = Entry{Value: append([]byte(nil), value...), UpdatedAt: updatedAt}
}

var _ Store = (*MemoryStore)(nil)
