package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimiter enforces a fixed-window per-client-IP request limit. Expired
// windows are swept lazily once the bucket map grows past a threshold.
func RateLimiter(limit int, window time.Duration) echo.MiddlewareFunc {
	type clientWindow struct {
		count int
		start time.Time
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*clientWindow)
	)

	sweep := func(now time.Time) {
		if len(clients) < 1024 {
			return
		}
		for ip, w := range clients {
			if now.Sub(w.start) > window {
				delete(clients, ip)
			}
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := time.Now()
			ip := c.RealIP()

			mu.Lock()
			sweep(now)

			w, ok := clients[ip]
			if !ok || now.Sub(w.start) > window {
				w = &clientWindow{start: now}
				clients[ip] = w
			}

			if w.count >= limit {
				mu.Unlock()
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}

			w.count++
			mu.Unlock()

			return next(c)
		}
	}
}
