package service

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// driveAPIHost labels attempts made through the Drive REST API.
const driveAPIHost = "www.googleapis.com"

// DriveAPIEndpoint downloads file content through the Drive v3 API. It only
// works for files shared publicly, same as the URL endpoints, but is not
// subject to the thumbnail rate limits.
type DriveAPIEndpoint struct {
	files *drive.FilesService
}

// NewDriveAPIEndpoint builds an endpoint authenticated with an API key.
// Extra options are appended, e.g. option.WithEndpoint in tests.
func NewDriveAPIEndpoint(ctx context.Context, apiKey string, opts ...option.ClientOption) (*DriveAPIEndpoint, error) {
	if apiKey == "" {
		return nil, errors.New("drive api key is empty")
	}
	svc, err := drive.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &DriveAPIEndpoint{files: svc.Files}, nil
}

// Fetch downloads the file body. API errors keep their HTTP status.
func (e *DriveAPIEndpoint) Fetch(ctx context.Context, fileID string) Attempt {
	attempt := Attempt{Host: driveAPIHost}

	resp, err := e.files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			attempt.Status = apiErr.Code
		}
		attempt.Err = err
		return attempt
	}
	defer func() { _ = resp.Body.Close() }()

	attempt.Status = resp.StatusCode
	attempt.ContentType = resp.Header.Get("Content-Type")
	attempt.Data, attempt.Err = readMediaBody(resp.Body, maxMediaBytes)
	return attempt
}

var _ MediaEndpoint = (*DriveAPIEndpoint)(nil)
