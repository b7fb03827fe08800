package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSheetFetcher_Fetch(t *testing.T) {
	tests := map[string]struct {
		status     int
		body       string
		expectErr  bool
		expectCode int
	}{
		"success": {
			status: http.StatusOK,
			body:   "name,category\nAcme,Shop\n",
		},
		"not found": {
			status:     http.StatusNotFound,
			body:       "nope",
			expectErr:  true,
			expectCode: http.StatusNotFound,
		},
		"empty body": {
			status:     http.StatusOK,
			expectErr:  true,
			expectCode: http.StatusOK,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("User-Agent") != BrowserUserAgent {
					t.Errorf("expected browser user agent, got %q", r.Header.Get("User-Agent"))
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			fetcher := NewSheetFetcher(server.URL, server.Client(), Options{})
			body, err := fetcher.Fetch(context.Background())
			if !tt.expectErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if string(body) != tt.body {
					t.Fatalf("unexpected body: %q", body)
				}
				return
			}

			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("expected FetchError, got %v", err)
			}
			if fetchErr.Status != tt.expectCode {
				t.Fatalf("expected status %d, got %d", tt.expectCode, fetchErr.Status)
			}
		})
	}
}

func TestSheetFetcher_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pub", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/export", http.StatusTemporaryRedirect)
	})
	mux.HandleFunc("/export", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("a,b\n1,2\n"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fetcher := NewSheetFetcher(server.URL+"/pub", nil, Options{InsecureTLS: true})
	body, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "a,b\n1,2\n" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestSheetFetcher_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewSheetFetcher(url, nil, Options{}).Fetch(context.Background())
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Status != 0 {
		t.Fatalf("expected zero status for transport failure, got %d", fetchErr.Status)
	}
}
