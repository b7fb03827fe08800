package service

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mediazoo/laukaainfo/api/internal/source"
)

const (
	driveReferer        = "https://drive.google.com/"
	mediaConnectTimeout = 3 * time.Second
	mediaMaxRedirects   = 4
	// maxMediaBytes bounds a single upstream image download.
	maxMediaBytes = 25 << 20
)

// ErrMediaTooLarge rejects an upstream body larger than the download limit.
var ErrMediaTooLarge = errors.New("image exceeds size limit")

// DefaultDriveTemplates are tried in order; {id} is replaced by the file id.
var DefaultDriveTemplates = []string{
	"https://lh3.googleusercontent.com/d/{id}=w1200",
	"https://drive.google.com/thumbnail?id={id}&sz=w1200",
	"https://drive.usercontent.google.com/download?id={id}&export=view",
	"https://drive.google.com/uc?export=view&id={id}",
}

// Attempt is the outcome of one upstream media request.
type Attempt struct {
	Host        string
	Status      int
	ContentType string
	Data        []byte
	Err         error
}

// MediaEndpoint fetches image bytes for a Drive file id from one upstream.
type MediaEndpoint interface {
	Fetch(ctx context.Context, fileID string) Attempt
}

// TemplateEndpoint issues a GET against a URL template.
type TemplateEndpoint struct {
	Template  string
	Client    *http.Client
	UserAgent string
	Referer   string
	// MaxBytes caps the accepted body; zero means 25 MiB.
	MaxBytes int64
}

// NewMediaHTTPClient returns a client tuned for Drive: short connect
// timeout, at most four redirects, optional TLS verification bypass.
// Per-attempt deadlines come from the request context.
func NewMediaHTTPClient(insecureTLS bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: mediaConnectTimeout, KeepAlive: 30 * time.Second}).DialContext
	if insecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > mediaMaxRedirects {
				return errors.New("stopped after too many redirects")
			}
			return nil
		},
	}
}

// DefaultDriveEndpoints builds the four fixed Drive endpoints sharing client.
func DefaultDriveEndpoints(client *http.Client) []MediaEndpoint {
	endpoints := make([]MediaEndpoint, 0, len(DefaultDriveTemplates))
	for _, tmpl := range DefaultDriveTemplates {
		endpoints = append(endpoints, &TemplateEndpoint{Template: tmpl, Client: client})
	}
	return endpoints
}

// URL expands the template for fileID.
func (e *TemplateEndpoint) URL(fileID string) string {
	return strings.ReplaceAll(e.Template, "{id}", url.QueryEscape(fileID))
}

// Fetch performs the request. Transport failures are reported with status 0.
func (e *TemplateEndpoint) Fetch(ctx context.Context, fileID string) Attempt {
	target := e.URL(fileID)
	attempt := Attempt{Host: hostOf(target)}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		attempt.Err = err
		return attempt
	}
	userAgent := e.UserAgent
	if userAgent == "" {
		userAgent = source.BrowserUserAgent
	}
	referer := e.Referer
	if referer == "" {
		referer = driveReferer
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", referer)
	req.Header.Set("Accept", "image/avif,image/webp,image/*,*/*;q=0.8")

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		attempt.Err = err
		return attempt
	}
	defer func() { _ = resp.Body.Close() }()

	attempt.Status = resp.StatusCode
	attempt.ContentType = resp.Header.Get("Content-Type")
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxMediaBytes))
		return attempt
	}

	attempt.Data, attempt.Err = readMediaBody(resp.Body, e.MaxBytes)
	return attempt
}

// readMediaBody reads at most limit bytes. A body that does not fit is an
// error rather than a truncated image.
func readMediaBody(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = maxMediaBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrMediaTooLarge, limit)
	}
	return data, nil
}

func hostOf(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return parsed.Host
}

var _ MediaEndpoint = (*TemplateEndpoint)(nil)
