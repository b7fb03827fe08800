package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/mediazoo/laukaainfo/api/internal/cache"
	"github.com/mediazoo/laukaainfo/api/internal/dto"
	"github.com/mediazoo/laukaainfo/api/internal/metrics"
)

const (
	DefaultMediaAttemptTimeout = 6 * time.Second
	DefaultMediaTotalTimeout   = 24 * time.Second

	defaultMediaContentType = "image/jpeg"
	mediaCacheSuffix        = ".jpg"
)

var (
	// ErrMissingFileID is returned when no file id was supplied.
	ErrMissingFileID = errors.New("missing file id")
	// ErrInvalidFileID is returned for ids outside the Drive id alphabet.
	ErrInvalidFileID = errors.New("invalid file id")

	fileIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)
)

// MediaService resolves Drive file ids to image bytes, trying each upstream
// endpoint in order and caching the first acceptable image.
type MediaService struct {
	store          cache.Store
	endpoints      []MediaEndpoint
	attemptTimeout time.Duration
	totalTimeout   time.Duration
}

// MediaOption customises a MediaService.
type MediaOption func(*MediaService)

// WithAttemptTimeout bounds each upstream request.
func WithAttemptTimeout(d time.Duration) MediaOption {
	return func(s *MediaService) {
		if d > 0 {
			s.attemptTimeout = d
		}
	}
}

// WithTotalTimeout bounds the whole resolution across endpoints.
func WithTotalTimeout(d time.Duration) MediaOption {
	return func(s *MediaService) {
		if d > 0 {
			s.totalTimeout = d
		}
	}
}

// NewMediaService returns a resolver over store and the ordered endpoints.
func NewMediaService(store cache.Store, endpoints []MediaEndpoint, opts ...MediaOption) *MediaService {
	s := &MediaService{
		store:          store,
		endpoints:      endpoints,
		attemptTimeout: DefaultMediaAttemptTimeout,
		totalTimeout:   DefaultMediaTotalTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateFileID checks that id is present and safe to use as a cache key.
func ValidateFileID(id string) error {
	if id == "" {
		return ErrMissingFileID
	}
	if !fileIDPattern.MatchString(id) {
		return ErrInvalidFileID
	}
	return nil
}

// Resolve returns the image for fileID. A cached image is returned without
// contacting upstream. When every endpoint fails the result is a placeholder
// SVG and a nil error; only an invalid id is reported as an error.
func (s *MediaService) Resolve(ctx context.Context, fileID string) (dto.MediaResult, error) {
	if err := ValidateFileID(fileID); err != nil {
		return dto.MediaResult{}, err
	}
	key := fileID + mediaCacheSuffix

	if entry, err := s.store.Get(ctx, key); err == nil && len(entry.Value) > 0 {
		contentType := SniffImage(entry.Value)
		if contentType == "" {
			contentType = defaultMediaContentType
		}
		metrics.ObserveMedia(metrics.MediaHit)
		return dto.MediaResult{Data: entry.Value, ContentType: contentType, CacheHit: true}, nil
	} else if err != nil && !errors.Is(err, cache.ErrNotFound) {
		log.Printf("event=media_cache_read_failed id=%s err=%q", fileID, err.Error())
	}

	totalCtx, cancel := context.WithTimeout(ctx, s.totalTimeout)
	defer cancel()

	attempts := make([]string, 0, len(s.endpoints))
	for _, endpoint := range s.endpoints {
		if totalCtx.Err() != nil {
			break
		}
		attempt := s.try(totalCtx, endpoint, fileID)
		metrics.ObserveMediaAttempt(attempt.Host, attempt.Status)

		contentType, ok := acceptImage(attempt)
		if !ok {
			attempts = append(attempts, fmt.Sprintf("%s:%d", attempt.Host, attempt.Status))
			continue
		}

		if err := s.store.Put(ctx, key, attempt.Data); err != nil {
			log.Printf("event=media_cache_write_failed id=%s err=%q", fileID, err.Error())
		}
		metrics.ObserveMedia(metrics.MediaFetched)
		return dto.MediaResult{Data: attempt.Data, ContentType: contentType, Attempts: attempts}, nil
	}

	detail := strings.Join(attempts, " | ")
	log.Printf("event=media_placeholder id=%s attempts=%q", fileID, detail)
	metrics.ObserveMedia(metrics.MediaPlaceholder)
	return dto.MediaResult{
		Data:        PlaceholderSVG(fileID, detail),
		ContentType: "image/svg+xml",
		Placeholder: true,
		Attempts:    attempts,
	}, nil
}

func (s *MediaService) try(ctx context.Context, endpoint MediaEndpoint, fileID string) Attempt {
	attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
	defer cancel()
	return endpoint.Fetch(attemptCtx, fileID)
}

// acceptImage reports whether the attempt produced an image and which
// content type to serve it with. Drive answers with HTML login pages on
// private files, so a 200 alone is not enough.
func acceptImage(a Attempt) (string, bool) {
	if a.Err != nil || a.Status != 200 || len(a.Data) == 0 {
		return "", false
	}
	if sniffed := SniffImage(a.Data); sniffed != "" {
		return sniffed, true
	}
	if declared := strings.ToLower(strings.TrimSpace(a.ContentType)); strings.HasPrefix(declared, "image/") {
		return a.ContentType, true
	}
	return "", false
}
