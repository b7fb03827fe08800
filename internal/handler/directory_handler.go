package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mediazoo/laukaainfo/api/internal/dto"
	"github.com/mediazoo/laukaainfo/api/internal/ingest"
	middleware "github.com/mediazoo/laukaainfo/api/internal/middleware"
	"github.com/mediazoo/laukaainfo/api/internal/source"
)

// DirectoryProvider returns the serialized company snapshot.
type DirectoryProvider interface {
	Companies(ctx context.Context, forceRefresh bool) (dto.DirectoryResult, error)
}

// DirectoryHandler serves the company directory JSON.
type DirectoryHandler struct {
	service DirectoryProvider
}

// NewDirectoryHandler creates a new handler instance.
func NewDirectoryHandler(service DirectoryProvider) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

// List handles GET /get_companies.php. Any query parameter acts as a cache
// buster and forces an upstream refresh unless the refresh throttle tripped.
func (h *DirectoryHandler) List(c echo.Context) error {
	forceRefresh := c.Request().URL.RawQuery != "" && !middleware.RefreshThrottled(c)

	result, err := h.service.Companies(c.Request().Context(), forceRefresh)

	header := c.Response().Header()
	noStore(header)

	if err != nil {
		log.Printf("request_id=%s event=directory_failed err=%q", middleware.RequestIDFromContext(c), err.Error())
		return Error(c, http.StatusInternalServerError, directoryErrorMessage(err))
	}

	switch {
	case result.Degraded():
		header.Set("X-Cache", "Serving expired cache")
	case result.State == dto.SnapshotFresh:
		header.Set("X-Cache", "HIT")
	}
	if !result.FetchedAt.IsZero() {
		header.Set(echo.HeaderLastModified, result.FetchedAt.UTC().Format(http.TimeFormat))
	}

	return c.Blob(http.StatusOK, "application/json; charset=UTF-8", result.Body)
}

func directoryErrorMessage(err error) string {
	var fetchErr *source.FetchError
	switch {
	case errors.As(err, &fetchErr):
		return fmt.Sprintf("Failed to fetch CSV (HTTP %d)", fetchErr.Status)
	case errors.Is(err, ingest.ErrMalformedSource):
		return "Malformed CSV header"
	default:
		return "Failed to build company directory"
	}
}
