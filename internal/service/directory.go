package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mediazoo/laukaainfo/api/internal/cache"
	"github.com/mediazoo/laukaainfo/api/internal/dto"
	"github.com/mediazoo/laukaainfo/api/internal/ingest"
	"github.com/mediazoo/laukaainfo/api/internal/metrics"
	"github.com/mediazoo/laukaainfo/api/internal/source"
)

const (
	// DefaultSnapshotTTL is how long a snapshot is served without refreshing.
	DefaultSnapshotTTL = time.Hour
	// DefaultSnapshotKey names the snapshot entry in the cache store.
	DefaultSnapshotKey = "companies_cache.json"
)

// ErrNoSnapshot is returned when the upstream fails and nothing is cached.
var ErrNoSnapshot = errors.New("no cached snapshot available")

// DirectoryService serves the company snapshot with a TTL and falls back
// to the last good snapshot when the upstream sheet cannot be fetched.
type DirectoryService struct {
	fetcher  source.Fetcher
	pipeline *ingest.Pipeline
	store    cache.Store
	key      string
	ttl      time.Duration
	now      cache.Clock
	flights  singleflight.Group
}

// DirectoryOption customises a DirectoryService.
type DirectoryOption func(*DirectoryService)

// WithSnapshotTTL overrides the freshness window.
func WithSnapshotTTL(ttl time.Duration) DirectoryOption {
	return func(s *DirectoryService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSnapshotKey overrides the cache key of the snapshot.
func WithSnapshotKey(key string) DirectoryOption {
	return func(s *DirectoryService) {
		if key != "" {
			s.key = key
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now cache.Clock) DirectoryOption {
	return func(s *DirectoryService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewDirectoryService wires the fetcher, pipeline and snapshot store.
func NewDirectoryService(fetcher source.Fetcher, pipeline *ingest.Pipeline, store cache.Store, opts ...DirectoryOption) *DirectoryService {
	if pipeline == nil {
		pipeline = ingest.NewPipeline()
	}
	s := &DirectoryService{
		fetcher:  fetcher,
		pipeline: pipeline,
		store:    store,
		key:      DefaultSnapshotKey,
		ttl:      DefaultSnapshotTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Companies returns the serialized company array. A fresh snapshot is
// returned verbatim unless forceRefresh is set; otherwise the sheet is
// fetched and the snapshot rewritten. Fetch failures fall back to any
// cached snapshot regardless of age.
func (s *DirectoryService) Companies(ctx context.Context, forceRefresh bool) (dto.DirectoryResult, error) {
	cached, hasCache := s.loadSnapshot(ctx)

	if hasCache && !forceRefresh && cached.Age(s.now()) < s.ttl {
		metrics.ObserveDirectory(metrics.DirectoryFresh)
		return dto.DirectoryResult{Body: cached.Value, State: dto.SnapshotFresh, FetchedAt: cached.UpdatedAt}, nil
	}

	body, err := s.refreshShared(ctx)
	if err == nil {
		metrics.ObserveDirectory(metrics.DirectoryRefreshed)
		return dto.DirectoryResult{Body: body, State: dto.SnapshotRefreshed, FetchedAt: s.now()}, nil
	}

	var fetchErr *source.FetchError
	if errors.As(err, &fetchErr) {
		if hasCache {
			log.Printf("event=snapshot_fallback key=%s age=%s status=%d err=%q", s.key, cached.Age(s.now()).Round(time.Second), fetchErr.Status, err.Error())
			metrics.ObserveDirectory(metrics.DirectoryFallback)
			return dto.DirectoryResult{Body: cached.Value, State: dto.SnapshotStale, FetchedAt: cached.UpdatedAt}, nil
		}
		metrics.ObserveDirectory(metrics.DirectoryError)
		return dto.DirectoryResult{}, fmt.Errorf("%w: %w", ErrNoSnapshot, err)
	}

	metrics.ObserveDirectory(metrics.DirectoryError)
	return dto.DirectoryResult{}, err
}

// loadSnapshot reads the cached snapshot. Read failures and snapshots that
// fail validation are treated as absent.
func (s *DirectoryService) loadSnapshot(ctx context.Context) (cache.Entry, bool) {
	entry, err := s.store.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			log.Printf("event=snapshot_read_failed key=%s err=%q", s.key, err.Error())
		}
		return cache.Entry{}, false
	}
	if err := ingest.ValidateSnapshot(entry.Value); err != nil {
		log.Printf("event=snapshot_invalid key=%s err=%q", s.key, err.Error())
		return cache.Entry{}, false
	}
	return entry, true
}

// refreshShared collapses concurrent refreshes of the same snapshot into
// one upstream fetch. The flight is detached from the caller's cancellation.
func (s *DirectoryService) refreshShared(ctx context.Context) ([]byte, error) {
	result, err, _ := s.flights.Do(s.key, func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (s *DirectoryService) refresh(ctx context.Context) ([]byte, error) {
	start := time.Now()
	body, err := s.build(ctx)
	metrics.ObserveUpstreamFetch(time.Since(start).Seconds(), err == nil)
	if err != nil {
		return nil, err
	}

	if err := s.store.Put(ctx, s.key, body); err != nil {
		log.Printf("event=cache_write_failed key=%s err=%q", s.key, err.Error())
	}
	return body, nil
}

func (s *DirectoryService) build(ctx context.Context) ([]byte, error) {
	raw, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	companies, err := s.pipeline.Build(raw)
	if err != nil {
		return nil, err
	}
	return ingest.EncodeSnapshot(companies)
}
