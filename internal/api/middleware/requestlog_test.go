package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLoggedEcho routes every request through RequestLog into buf.
func newLoggedEcho(buf *bytes.Buffer, status func() int) *echo.Echo {
	e := echo.New()
	e.Use(RequestLog(slog.New(slog.NewTextHandler(buf, nil))))

	h := func(c echo.Context) error { return c.NoContent(status()) }
	e.GET("/healthz", h)
	e.GET("/readyz", h)
	e.GET("/api/v1/sessions", h)
	e.POST("/api/v1/sessions", h)
	e.GET("/api/v1/sessions/:id", h)
	e.POST("/api/v1/sessions/:id/scroll", h)
	e.DELETE("/api/v1/snapshots/:id", h)
	return e
}

func serve(e *echo.Echo, method, path, reqID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	if reqID != "" {
		req.Header.Set(requestIDHeader, reqID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequestLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		method  string
		path    string
		status  int
		reqID   string
		want    []string
		notWant []string
	}{
		{
			name:    "list sessions",
			method:  http.MethodGet,
			path:    "/api/v1/sessions",
			status:  http.StatusOK,
			want:    []string{"method=GET", "path=/api/v1/sessions", "status=200", "duration_ms=", "request_id="},
			notWant: []string{"session_id="},
		},
		{
			name:   "create session",
			method: http.MethodPost,
			path:   "/api/v1/sessions",
			status: http.StatusCreated,
			want:   []string{"method=POST", "status=201"},
		},
		{
			name:   "session route carries session id",
			method: http.MethodPost,
			path:   "/api/v1/sessions/abc-123/scroll",
			status: http.StatusAccepted,
			want:   []string{"session_id=abc-123", "status=202"},
		},
		{
			name:    "snapshot id is not a session id",
			method:  http.MethodDelete,
			path:    "/api/v1/snapshots/abc-123",
			status:  http.StatusNoContent,
			notWant: []string{"session_id="},
		},
		{
			name:   "provided request id is kept",
			method: http.MethodGet,
			path:   "/api/v1/sessions/s1",
			status: http.StatusOK,
			reqID:  "custom-req-id-123",
			want:   []string{"request_id=custom-req-id-123"},
		},
		{
			name:   "server errors log at warn",
			method: http.MethodGet,
			path:   "/api/v1/sessions/s1",
			status: http.StatusInternalServerError,
			want:   []string{"level=WARN", "status=500"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			e := newLoggedEcho(&buf, func() int { return tt.status })

			rec := serve(e, tt.method, tt.path, tt.reqID)
			require.Equal(t, tt.status, rec.Code)

			out := buf.String()
			for _, field := range tt.want {
				assert.Contains(t, out, field)
			}
			for _, field := range tt.notWant {
				assert.NotContains(t, out, field)
			}

			respID := rec.Header().Get(requestIDHeader)
			assert.NotEmpty(t, respID)
			if tt.reqID != "" {
				assert.Equal(t, tt.reqID, respID)
			}
		})
	}
}

func TestRequestLog_Probes(t *testing.T) {
	t.Parallel()

	// Each step serves one request and says whether it must add a log line.
	type step struct {
		path    string
		status  int
		wantLog bool
	}

	tests := []struct {
		name  string
		steps []step
	}{
		{
			name: "repeated healthz successes logged once",
			steps: []step{
				{"/healthz", http.StatusOK, true},
				{"/healthz", http.StatusOK, false},
				{"/healthz", http.StatusOK, false},
			},
		},
		{
			name: "failures always logged",
			steps: []step{
				{"/readyz", http.StatusServiceUnavailable, true},
				{"/readyz", http.StatusServiceUnavailable, true},
			},
		},
		{
			name: "recovery after failure logged again",
			steps: []step{
				{"/readyz", http.StatusOK, true},
				{"/readyz", http.StatusOK, false},
				{"/readyz", http.StatusServiceUnavailable, true},
				{"/readyz", http.StatusOK, true},
				{"/readyz", http.StatusOK, false},
			},
		},
		{
			name: "probes tracked per path",
			steps: []step{
				{"/healthz", http.StatusOK, true},
				{"/readyz", http.StatusOK, true},
				{"/healthz", http.StatusOK, false},
			},
		},
		{
			name: "api paths never suppressed",
			steps: []step{
				{"/api/v1/sessions", http.StatusOK, true},
				{"/api/v1/sessions", http.StatusOK, true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				buf    bytes.Buffer
				status int
			)
			e := newLoggedEcho(&buf, func() int { return status })

			for i, s := range tt.steps {
				status = s.status
				before := strings.Count(buf.String(), "\n")
				serve(e, http.MethodGet, s.path, "")
				logged := strings.Count(buf.String(), "\n") > before
				assert.Equal(t, s.wantLog, logged, "step %d: %s %d", i, s.path, s.status)
			}
		})
	}
}
