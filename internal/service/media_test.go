package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediazoo/laukaainfo/api/internal/cache"
)

const testFileID = "1AbCdEfGhIjKlMnOpQrStUvWxYz_-012"

var (
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, []byte("0000JFIF-jpeg-payload")...)
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n"), []byte("png-payload")...)
	webpBytes = []byte("RIFF\x24\x00\x00\x00WEBPVP8 payload")
)

type endpointFunc func(ctx context.Context, fileID string) Attempt

func (f endpointFunc) Fetch(ctx context.Context, fileID string) Attempt {
	return f(ctx, fileID)
}

// brokenStore reads like an empty cache and fails every write.
type brokenStore struct {
	puts atomic.Int32
}

func (s *brokenStore) Get(context.Context, string) (cache.Entry, error) {
	return cache.Entry{}, cache.ErrNotFound
}

func (s *brokenStore) Put(context.Context, string, []byte) error {
	s.puts.Add(1)
	return errors.New("disk full")
}

func staticEndpoint(host string, status int, contentType string, data []byte) MediaEndpoint {
	return endpointFunc(func(context.Context, string) Attempt {
		return Attempt{Host: host, Status: status, ContentType: contentType, Data: data}
	})
}

func TestValidateFileID(t *testing.T) {
	tests := map[string]struct {
		id   string
		want error
	}{
		"valid":      {id: testFileID},
		"empty":      {id: "", want: ErrMissingFileID},
		"traversal":  {id: "../../etc/passwd", want: ErrInvalidFileID},
		"slash":      {id: "abc/def", want: ErrInvalidFileID},
		"whitespace": {id: "abc def", want: ErrInvalidFileID},
		"too long":   {id: strings.Repeat("a", 129), want: ErrInvalidFileID},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := ValidateFileID(tt.id)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMediaService_CacheHitSkipsUpstream(t *testing.T) {
	store := cache.NewMemoryStore(nil)
	store.Set(testFileID+".jpg", pngBytes, time.Now())

	var called atomic.Bool
	svc := NewMediaService(store, []MediaEndpoint{endpointFunc(func(context.Context, string) Attempt {
		called.Store(true)
		return Attempt{}
	})})

	result, err := svc.Resolve(context.Background(), testFileID)
	require.NoError(t, err)
	assert.True(t, result.CacheHit)
	assert.Equal(t, "image/png", result.ContentType)
	assert.Equal(t, pngBytes, result.Data)
	assert.False(t, called.Load())
}

func TestMediaService_CacheHitUnknownBytesDefaultsToJPEG(t *testing.T) {
	store := cache.NewMemoryStore(nil)
	store.Set(testFileID+".jpg", []byte("not-a-known-image-format"), time.Now())

	result, err := NewMediaService(store, nil).Resolve(context.Background(), testFileID)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", result.ContentType)
}

func TestMediaService_FallsThroughToFirstImage(t *testing.T) {
	store := cache.NewMemoryStore(nil)
	svc := NewMediaService(store, []MediaEndpoint{
		staticEndpoint("lh3.googleusercontent.com", 403, "text/html", []byte("<html>denied</html>")),
		staticEndpoint("drive.google.com", 200, "text/html; charset=utf-8", []byte("<!DOCTYPE html><html>login</html>")),
		staticEndpoint("drive.usercontent.google.com", 200, "application/octet-stream", webpBytes),
		staticEndpoint("drive.google.com", 200, "image/jpeg", jpegBytes),
	})

	result, err := svc.Resolve(context.Background(), testFileID)
	require.NoError(t, err)
	assert.False(t, result.Placeholder)
	assert.Equal(t, "image/webp", result.ContentType)
	assert.Equal(t, webpBytes, result.Data)
	assert.Equal(t, []string{"lh3.googleusercontent.com:403", "drive.google.com:200"}, result.Attempts)

	entry, err := store.Get(context.Background(), testFileID+".jpg")
	require.NoError(t, err)
	assert.Equal(t, webpBytes, entry.Value)
}

func TestMediaService_DeclaredImageTypeIsAccepted(t *testing.T) {
	payload := []byte("<svg xmlns='http://www.w3.org/2000/svg'></svg>")
	svc := NewMediaService(cache.NewMemoryStore(nil), []MediaEndpoint{
		staticEndpoint("lh3.googleusercontent.com", 200, "image/svg+xml", payload),
	})

	result, err := svc.Resolve(context.Background(), testFileID)
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", result.ContentType)
	assert.Equal(t, payload, result.Data)
}

func TestMediaService_AllEndpointsFailReturnsPlaceholder(t *testing.T) {
	store := cache.NewMemoryStore(nil)
	svc := NewMediaService(store, []MediaEndpoint{
		staticEndpoint("lh3.googleusercontent.com", 403, "", nil),
		staticEndpoint("drive.google.com", 404, "", nil),
		staticEndpoint("drive.usercontent.google.com", 0, "", nil),
		staticEndpoint("drive.google.com", 200, "text/html", []byte("<html></html>")),
	})

	result, err := svc.Resolve(context.Background(), testFileID)
	require.NoError(t, err)
	assert.True(t, result.Placeholder)
	assert.Equal(t, "image/svg+xml", result.ContentType)
	assert.Contains(t, string(result.Data), "ID: "+testFileID)
	assert.Contains(t, string(result.Data), "lh3.googleusercontent.com:403 | drive.google.com:404")
	assert.Len(t, result.Attempts, 4)

	_, err = store.Get(context.Background(), testFileID+".jpg")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestMediaService_AttemptTimeoutBoundsSlowEndpoint(t *testing.T) {
	slow := endpointFunc(func(ctx context.Context, _ string) Attempt {
		<-ctx.Done()
		return Attempt{Host: "slow.example", Err: ctx.Err()}
	})
	svc := NewMediaService(cache.NewMemoryStore(nil),
		[]MediaEndpoint{slow, staticEndpoint("fast.example", 200, "image/png", pngBytes)},
		WithAttemptTimeout(20*time.Millisecond))

	result, err := svc.Resolve(context.Background(), testFileID)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, result.Data)
	assert.Equal(t, []string{"slow.example:0"}, result.Attempts)
}

func TestMediaService_TotalTimeoutStopsIteration(t *testing.T) {
	var calls atomic.Int32
	slow := endpointFunc(func(ctx context.Context, _ string) Attempt {
		calls.Add(1)
		<-ctx.Done()
		return Attempt{Host: "slow.example", Err: ctx.Err()}
	})
	svc := NewMediaService(cache.NewMemoryStore(nil),
		[]MediaEndpoint{slow, slow, slow, slow},
		WithAttemptTimeout(time.Second), WithTotalTimeout(30*time.Millisecond))

	result, err := svc.Resolve(context.Background(), testFileID)
	require.NoError(t, err)
	assert.True(t, result.Placeholder)
	assert.EqualValues(t, 1, calls.Load())
}

func TestMediaService_CacheWriteFailureStillServesImage(t *testing.T) {
	store := &brokenStore{}
	svc := NewMediaService(store, []MediaEndpoint{
		staticEndpoint("lh3.googleusercontent.com", 200, "image/png", pngBytes),
	})

	result, err := svc.Resolve(context.Background(), testFileID)
	require.NoError(t, err)
	assert.False(t, result.Placeholder)
	assert.Equal(t, pngBytes, result.Data)
	assert.Equal(t, "image/png", result.ContentType)
	assert.EqualValues(t, 1, store.puts.Load())
}

func TestMediaService_OversizedImageFallsThrough(t *testing.T) {
	large := append(append([]byte{}, jpegBytes...), bytes.Repeat([]byte{0x00}, 64)...)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(large)
	}))
	defer server.Close()

	store := cache.NewMemoryStore(nil)
	svc := NewMediaService(store, []MediaEndpoint{
		&TemplateEndpoint{Template: server.URL + "/d/{id}", Client: server.Client(), MaxBytes: int64(len(large) - 1)},
		staticEndpoint("drive.google.com", 200, "image/png", pngBytes),
	})

	result, err := svc.Resolve(context.Background(), testFileID)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, result.Data)
	assert.Len(t, result.Attempts, 1)

	entry, err := store.Get(context.Background(), testFileID+".jpg")
	require.NoError(t, err)
	assert.Equal(t, pngBytes, entry.Value)
}

func TestMediaService_RejectsInvalidID(t *testing.T) {
	svc := NewMediaService(cache.NewMemoryStore(nil), nil)

	_, err := svc.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingFileID)

	_, err = svc.Resolve(context.Background(), "../secret")
	assert.ErrorIs(t, err, ErrInvalidFileID)
}

func TestTemplateEndpoint_Fetch(t *testing.T) {
	var gotUA, gotReferer, gotID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		gotID = r.URL.Query().Get("id")
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(jpegBytes)
	}))
	defer server.Close()

	endpoint := &TemplateEndpoint{Template: server.URL + "/thumbnail?id={id}&sz=w1200", Client: server.Client()}
	attempt := endpoint.Fetch(context.Background(), testFileID)

	require.NoError(t, attempt.Err)
	assert.Equal(t, http.StatusOK, attempt.Status)
	assert.Equal(t, jpegBytes, attempt.Data)
	assert.Equal(t, testFileID, gotID)
	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Equal(t, "https://drive.google.com/", gotReferer)
	assert.Equal(t, strings.TrimPrefix(server.URL, "http://"), attempt.Host)
}

func TestTemplateEndpoint_NonOKKeepsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer server.Close()

	attempt := (&TemplateEndpoint{Template: server.URL + "/d/{id}", Client: server.Client()}).Fetch(context.Background(), testFileID)
	assert.Equal(t, http.StatusForbidden, attempt.Status)
	assert.Empty(t, attempt.Data)
}

func TestTemplateEndpoint_BodyOverLimitIsRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(jpegBytes)
	}))
	defer server.Close()

	over := &TemplateEndpoint{Template: server.URL + "/d/{id}", Client: server.Client(), MaxBytes: int64(len(jpegBytes) - 1)}
	attempt := over.Fetch(context.Background(), testFileID)
	assert.ErrorIs(t, attempt.Err, ErrMediaTooLarge)
	assert.Nil(t, attempt.Data)

	exact := &TemplateEndpoint{Template: server.URL + "/d/{id}", Client: server.Client(), MaxBytes: int64(len(jpegBytes))}
	attempt = exact.Fetch(context.Background(), testFileID)
	require.NoError(t, attempt.Err)
	assert.Equal(t, jpegBytes, attempt.Data)
}

func TestReadMediaBody(t *testing.T) {
	data, err := readMediaBody(bytes.NewReader([]byte("abcd")), 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), data)

	_, err = readMediaBody(bytes.NewReader([]byte("abcde")), 4)
	assert.ErrorIs(t, err, ErrMediaTooLarge)
}

func TestNewMediaHTTPClient_LimitsRedirects(t *testing.T) {
	var hops atomic.Int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hops.Add(1)
		http.Redirect(w, r, server.URL+"/next", http.StatusFound)
	}))
	defer server.Close()

	endpoint := &TemplateEndpoint{Template: server.URL + "/start?id={id}", Client: NewMediaHTTPClient(false)}
	attempt := endpoint.Fetch(context.Background(), testFileID)

	require.Error(t, attempt.Err)
	assert.EqualValues(t, 5, hops.Load())
}

func TestDefaultDriveEndpoints(t *testing.T) {
	endpoints := DefaultDriveEndpoints(http.DefaultClient)
	require.Len(t, endpoints, 4)

	first, ok := endpoints[0].(*TemplateEndpoint)
	require.True(t, ok)
	assert.Equal(t, "https://lh3.googleusercontent.com/d/"+testFileID+"=w1200", first.URL(testFileID))
}

func TestSniffImage(t *testing.T) {
	tests := map[string]struct {
		data []byte
		want string
	}{
		"jpeg":      {data: jpegBytes, want: "image/jpeg"},
		"png":       {data: pngBytes, want: "image/png"},
		"gif":       {data: []byte("GIF89a-----gif"), want: "image/gif"},
		"webp":      {data: webpBytes, want: "image/webp"},
		"html":      {data: []byte("<!DOCTYPE html><html></html>"), want: ""},
		"too short": {data: []byte{0xFF, 0xD8, 0xFF}, want: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, SniffImage(tt.data))
		})
	}
}

func TestPlaceholderSVG(t *testing.T) {
	detail := strings.Repeat("x", 200)
	svg := string(PlaceholderSVG(`<id>`, detail))

	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.Contains(t, svg, "Mediaa ei voitu noutaa")
	assert.Contains(t, svg, "ID: &lt;id&gt;")
	assert.Contains(t, svg, strings.Repeat("x", 80)+"...")
	assert.NotContains(t, svg, strings.Repeat("x", 81))
}
