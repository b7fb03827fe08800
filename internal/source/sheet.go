// Package source fetches the raw CSV export of the published company spreadsheet.
package source

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single CSV download.
const DefaultTimeout = 30 * time.Second

// BrowserUserAgent is presented to Google endpoints, which serve some
// exports differently to non-browser clients.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher returns raw CSV bytes from an upstream source.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// FetchError signals that the upstream did not return a usable CSV body.
// Status is zero when the request never produced a response.
type FetchError struct {
	URL    string
	Status int
	Cause  error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch csv from %s (HTTP %d): %v", e.URL, e.Status, e.Cause)
	}
	return fmt.Sprintf("fetch csv from %s (HTTP %d)", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Options configures a SheetFetcher.
type Options struct {
	Timeout     time.Duration
	UserAgent   string
	InsecureTLS bool
}

// SheetFetcher downloads a published spreadsheet as CSV over HTTP.
type SheetFetcher struct {
	url       string
	client    *http.Client
	userAgent string
}

// NewSheetFetcher builds a fetcher for the given export URL. A nil client
// gets one configured from opts; redirects are followed by default.
func NewSheetFetcher(url string, client *http.Client, opts Options) *SheetFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = BrowserUserAgent
	}
	if client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if opts.InsecureTLS {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		}
		client = &http.Client{Timeout: opts.Timeout, Transport: transport}
	}
	return &SheetFetcher{url: strings.TrimSpace(url), client: client, userAgent: opts.UserAgent}
}

// URL returns the upstream export address.
func (f *SheetFetcher) URL() string {
	return f.url
}

// Fetch downloads the CSV. Any non-200 status or empty body is a FetchError.
func (f *SheetFetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, &FetchError{URL: f.url, Cause: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/csv,text/plain;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: f.url, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{URL: f.url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: f.url, Status: resp.StatusCode, Cause: err}
	}
	if len(body) == 0 {
		return nil, &FetchError{URL: f.url, Status: resp.StatusCode, Cause: fmt.Errorf("empty body")}
	}
	return body, nil
}

var _ Fetcher = (*SheetFetcher)(nil)
