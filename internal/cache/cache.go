// Package cache stores derived artifacts (directory snapshots, media bytes)
// keyed by name, together with the time they were written.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no entry exists for a key.
	ErrNotFound = errors.New("cache entry not found")
	// ErrInvalidKey is returned for keys that cannot be stored safely.
	ErrInvalidKey = errors.New("invalid cache key")
)

// Entry is a stored value and its write time.
type Entry struct {
	Value     []byte
	UpdatedAt time.Time
}

// Age reports how old the entry is at now.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.UpdatedAt)
}

// Store is a key/value cache with write timestamps. Implementations must
// never leave a partially written value visible to Get.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Clock returns the current time; tests substitute a fixed clock.
type Clock func() time.Time
