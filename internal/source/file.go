package source

import (
	"context"
	"fmt"
	"os"
)

// FileFetcher reads a CSV export from local disk, for offline runs of the
// pipeline against a downloaded copy of the sheet.
type FileFetcher struct {
	path string
}

// NewFileFetcher returns a fetcher for path.
func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{path: path}
}

// Fetch returns the file contents. An unreadable or empty file is reported
// as a FetchError so callers treat it like an unavailable upstream.
func (f *FileFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, &FetchError{URL: f.path, Cause: err}
	}
	if len(data) == 0 {
		return nil, &FetchError{URL: f.path, Cause: fmt.Errorf("empty file")}
	}
	return data, nil
}

var _ Fetcher = (*FileFetcher)(nil)
