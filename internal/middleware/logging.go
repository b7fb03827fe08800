package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

// Logging writes one line per request. The cache field carries the X-Cache
// header so fallbacks and proxy hits show up next to latency.
func Logging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			cacheState := res.Header().Get("X-Cache")
			if cacheState == "" {
				cacheState = "-"
			}
			log.Printf("request_id=%s method=%s path=%s status=%d bytes=%d cache=%q throttled=%t latency=%s",
				RequestIDFromContext(c), c.Request().Method, c.Request().URL.Path, res.Status, res.Size,
				cacheState, RefreshThrottled(c), time.Since(start))

			return err
		}
	}
}
