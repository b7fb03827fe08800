package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediazoo/laukaainfo/api/internal/cache"
)

// pgxPool is the subset of *pgxpool.Pool used by the repositories.
type pgxPool interface {
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
}

var _ pgxPool = (*pgxpool.Pool)(nil)

// Cache namespaces.
const (
	NamespaceSnapshots = "snapshots"
	NamespaceMedia     = "media"
)

const createCacheEntriesSQL = `
        CREATE TABLE IF NOT EXISTS cache_entries (
            namespace  TEXT        NOT NULL,
            key        TEXT        NOT NULL,
            value      BYTEA       NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (namespace, key)
        );
    `

const selectCacheEntrySQL = `
        SELECT value, updated_at
        FROM cache_entries
        WHERE namespace = $1 AND key = $2;
    `

const upsertCacheEntrySQL = `
        INSERT INTO cache_entries (namespace, key, value, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (namespace, key) DO UPDATE SET
            value = EXCLUDED.value,
            updated_at = NOW();
    `

// PGXCacheStore implements cache.Store on a Postgres table, so several API
// instances can share snapshots and media bytes. Each store owns one namespace.
type PGXCacheStore struct {
	pool      pgxPool
	namespace string
}

// NewPGXCacheStore wires a pgx backed cache store for the given namespace.
func NewPGXCacheStore(pool *pgxpool.Pool, namespace string) *PGXCacheStore {
	return &PGXCacheStore{pool: pool, namespace: namespace}
}

// EnsureCacheSchema creates the cache_entries table when missing.
func EnsureCacheSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return ensureCacheSchema(ctx, pool)
}

func ensureCacheSchema(ctx context.Context, pool pgxPool) error {
	if _, err := pool.Exec(ctx, createCacheEntriesSQL); err != nil {
		return fmt.Errorf("create cache_entries table: %w", err)
	}
	return nil
}

// Get loads the entry stored under key.
func (s *PGXCacheStore) Get(ctx context.Context, key string) (cache.Entry, error) {
	if key == "" {
		return cache.Entry{}, cache.ErrInvalidKey
	}

	var (
		value     []byte
		updatedAt time.Time
	)
	err := s.pool.QueryRow(ctx, selectCacheEntrySQL, s.namespace, key).Scan(&value, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cache.Entry{}, cache.ErrNotFound
		}
		return cache.Entry{}, fmt.Errorf("select cache entry %s/%s: %w", s.namespace, key, err)
	}
	return cache.Entry{Value: value, UpdatedAt: updatedAt}, nil
}

// Put inserts or replaces the entry for key in a single statement.
func (s *PGXCacheStore) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return cache.ErrInvalidKey
	}
	if value == nil {
		value = []byte{}
	}
	if _, err := s.pool.Exec(ctx, upsertCacheEntrySQL, s.namespace, key, value); err != nil {
		return fmt.Errorf("upsert cache entry %s/%s: %w", s.namespace, key, err)
	}
	return nil
}

var _ cache.Store = (*PGXCacheStore)(nil)
