package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CORSConfig lists the origins allowed to read the directory.
type CORSConfig struct {
	AllowedOrigins []string
	// DefaultOrigin is advertised when the request carries no Origin header.
	DefaultOrigin string
}

// OriginAllowList echoes back allow-listed origins and rejects unknown ones
// with 403 before the handler runs. Requests without an Origin header are
// same-origin or non-browser and get DefaultOrigin.
func OriginAllowList(cfg CORSConfig) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		allowed[origin] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Response().Header()
			header.Add(echo.HeaderVary, echo.HeaderOrigin)

			origin := c.Request().Header.Get(echo.HeaderOrigin)
			switch {
			case origin == "":
				if cfg.DefaultOrigin != "" {
					header.Set(echo.HeaderAccessControlAllowOrigin, cfg.DefaultOrigin)
				}
			default:
				if _, ok := allowed[origin]; !ok {
					return c.JSON(http.StatusForbidden, map[string]string{"status": "error", "message": "Forbidden Origin"})
				}
				header.Set(echo.HeaderAccessControlAllowOrigin, origin)
			}

			if c.Request().Method == http.MethodOptions {
				header.Set(echo.HeaderAccessControlAllowMethods, "GET, OPTIONS")
				return c.NoContent(http.StatusNoContent)
			}
			return next(c)
		}
	}
}
