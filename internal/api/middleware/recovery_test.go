package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecovery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		path       string
		reqID      string
		handler    echo.HandlerFunc
		wantStatus int
		wantLog    []string
	}{
		{
			name:   "handler returns normally",
			method: http.MethodGet,
			path:   "/api/v1/sessions",
			handler: func(c echo.Context) error {
				return c.NoContent(http.StatusNoContent)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "string panic on session route",
			method:     http.MethodPost,
			path:       "/api/v1/sessions/abc/scroll",
			reqID:      "req-scroll",
			handler:    func(echo.Context) error { panic("cursor overflow") },
			wantStatus: http.StatusInternalServerError,
			wantLog: []string{
				"panic recovered",
				"cursor overflow",
				"method=POST",
				"path=/api/v1/sessions/abc/scroll",
				"request_id=req-scroll",
			},
		},
		{
			name:       "non-string panic value",
			method:     http.MethodDelete,
			path:       "/api/v1/snapshots/s1",
			handler:    func(echo.Context) error { panic(404) },
			wantStatus: http.StatusInternalServerError,
			wantLog:    []string{"error=404", "method=DELETE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var recBuf bytes.Buffer
			recLog := slog.New(slog.NewTextHandler(&recBuf, nil))
			reqLog := slog.New(slog.NewTextHandler(io.Discard, nil))

			e := echo.New()
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			if tt.reqID != "" {
				req.Header.Set(requestIDHeader, tt.reqID)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			h := RequestLog(reqLog)(Recovery(recLog)(tt.handler))
			require.NoError(t, h(c))
			assert.Equal(t, tt.wantStatus, rec.Code)

			if len(tt.wantLog) == 0 {
				assert.Empty(t, recBuf.String())
				return
			}

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "internal server error", body["error"])
			assert.Equal(t, rec.Header().Get(requestIDHeader), body["request_id"])
			if tt.reqID != "" {
				assert.Equal(t, tt.reqID, body["request_id"])
			}
			for _, want := range tt.wantLog {
				assert.Contains(t, recBuf.String(), want)
			}
		})
	}
}

func TestRecovery_WithoutRequestID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody), rec)

	h := Recovery(log)(func(echo.Context) error { panic("store ping") })
	require.NoError(t, h(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	assert.Contains(t, buf.String(), `request_id=""`)
}
