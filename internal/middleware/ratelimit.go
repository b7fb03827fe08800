package middleware

import (
	"log"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/mediazoo/laukaainfo/api/internal/config"
)

// RefreshThrottle applies a token bucket to cache-busting directory requests
// (any request carrying a query string). Requests over the limit are not
// rejected; they are flagged so the handler serves the cached snapshot.
func RefreshThrottle(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}

	limiter := rate.NewLimiter(rate.Every(perRequest), cfg.Requests)
	var mu sync.Mutex

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().URL.RawQuery == "" {
				return next(c)
			}

			mu.Lock()
			allowed := limiter.Allow()
			mu.Unlock()

			if !allowed {
				log.Printf("event=refresh_throttled request_id=%s path=%s", RequestIDFromContext(c), c.Request().URL.Path)
				c.Set(ContextKeyRefreshThrottled, true)
			}

			return next(c)
		}
	}
}

// RefreshThrottled reports whether RefreshThrottle denied a forced refresh.
func RefreshThrottled(c echo.Context) bool {
	throttled, _ := c.Get(ContextKeyRefreshThrottled).(bool)
	return throttled
}
