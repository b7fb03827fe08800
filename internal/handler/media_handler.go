package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mediazoo/laukaainfo/api/internal/dto"
	"github.com/mediazoo/laukaainfo/api/internal/service"
)

const mediaMaxAge = 24 * time.Hour

// MediaResolver turns a Drive file id into image bytes.
type MediaResolver interface {
	Resolve(ctx context.Context, fileID string) (dto.MediaResult, error)
}

// MediaHandler proxies Google Drive images.
type MediaHandler struct {
	resolver MediaResolver
	now      func() time.Time
}

// NewMediaHandler creates a new handler instance.
func NewMediaHandler(resolver MediaResolver) *MediaHandler {
	return &MediaHandler{resolver: resolver, now: time.Now}
}

// Get handles GET /get_image.php?id=<fileId>. Upstream failures still
// answer 200 with a placeholder SVG so <img> tags always render.
func (h *MediaHandler) Get(c echo.Context) error {
	header := c.Response().Header()
	header.Set(echo.HeaderAccessControlAllowOrigin, "*")
	header.Set("X-Proxy-Status", "active")

	fileID := strings.TrimSpace(c.QueryParam("id"))
	result, err := h.resolver.Resolve(c.Request().Context(), fileID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFileID):
			return Error(c, http.StatusBadRequest, "Missing ID")
		case errors.Is(err, service.ErrInvalidFileID):
			return Error(c, http.StatusBadRequest, "Invalid ID")
		default:
			return Error(c, http.StatusInternalServerError, "failed to resolve media")
		}
	}

	if result.Placeholder {
		noStore(header)
		header.Set("X-Proxy-Error", strings.Join(result.Attempts, " | "))
		return c.Blob(http.StatusOK, result.ContentType, result.Data)
	}

	header.Set(echo.HeaderCacheControl, "public, max-age=86400")
	header.Set("Expires", h.now().Add(mediaMaxAge).UTC().Format(http.TimeFormat))
	if result.CacheHit {
		header.Set("X-Cache", "HIT")
	}
	return c.Blob(http.StatusOK, result.ContentType, result.Data)
}
