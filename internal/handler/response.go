package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse is the JSON envelope used for health checks and errors. The
// directory and media routes answer with raw bodies on success.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success writes a "success" envelope, defaulting to 200.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, APIResponse{Status: "success", Message: message, Data: data})
}

// Error writes an "error" envelope, defaulting to 500. Error bodies are never
// cacheable, whatever headers the route set before failing.
func Error(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	header := c.Response().Header()
	noStore(header)
	header.Del("Expires")
	header.Del("X-Cache")
	return c.JSON(status, APIResponse{Status: "error", Message: message})
}

func noStore(header http.Header) {
	header.Set(echo.HeaderCacheControl, "no-store, no-cache, must-revalidate, max-age=0")
	header.Set("Pragma", "no-cache")
}
