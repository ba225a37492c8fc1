package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const requestIDHeader = "X-Request-ID"

// RequestLog returns Echo middleware that logs one line per request. The
// request ID is taken from X-Request-ID or generated, echoed back in the
// response and stored in the echo context. Requests routed to a session
// carry its ID as session_id.
//
// Probe paths (/healthz, /readyz) are logged on their first success and on
// every failure; repeated successes are suppressed until the next failure.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	probes := &probeLog{healthy: make(map[string]bool)}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqID := c.Request().Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			c.Set("request_id", reqID)
			c.Response().Header().Set(requestIDHeader, reqID)

			err := next(c)

			path := c.Request().URL.Path
			status := c.Response().Status
			if !probes.shouldLog(path, status) {
				return err
			}

			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}

			attrs := []slog.Attr{
				slog.String("method", c.Request().Method),
				slog.String("path", path),
				slog.Int("status", status),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("request_id", reqID),
			}
			if id := sessionID(c); id != "" {
				attrs = append(attrs, slog.String("session_id", id))
			}
			log.LogAttrs(c.Request().Context(), level, "request", attrs...)

			return err
		}
	}
}

// sessionID returns the {id} path parameter of session routes.
func sessionID(c echo.Context) string {
	if !strings.HasPrefix(c.Path(), "/api/v1/sessions/") {
		return ""
	}
	return c.Param("id")
}

type probeLog struct {
	mu      sync.Mutex
	healthy map[string]bool
}

func (p *probeLog) shouldLog(path string, status int) bool {
	if _, ok := healthGauges[path]; !ok {
		return true
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ok := status >= 200 && status < 300
	if !ok {
		p.healthy[path] = false
		return true
	}
	if p.healthy[path] {
		return false
	}
	p.healthy[path] = true
	return true
}
