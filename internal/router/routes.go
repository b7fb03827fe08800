package router

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mediazoo/laukaainfo/api/internal/config"
	"github.com/mediazoo/laukaainfo/api/internal/handler"
	"github.com/mediazoo/laukaainfo/api/internal/metrics"
	middlewarepkg "github.com/mediazoo/laukaainfo/api/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Directory *handler.DirectoryHandler
	Media     *handler.MediaHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	directoryMiddleware := []echo.MiddlewareFunc{
		middlewarepkg.OriginAllowList(middlewarepkg.CORSConfig{
			AllowedOrigins: cfg.AllowedOrigins,
			DefaultOrigin:  cfg.DefaultOrigin,
		}),
		middlewarepkg.RefreshThrottle(cfg.RateLimitRefresh),
	}
	for _, path := range []string{"/get_companies.php", "/companies"} {
		e.GET(path, handlers.Directory.List, directoryMiddleware...)
		e.OPTIONS(path, handlers.Directory.List, directoryMiddleware...)
	}

	e.GET("/"+strings.TrimPrefix(cfg.ImageProxyPath, "/"), handlers.Media.Get)
}
