package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/product-search/pkg/logger"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"trace": slog.LevelInfo,
		"WARN":  slog.LevelInfo,
	}

	for in, want := range tests {
		t.Run("level "+in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, want, logger.ParseLevel(in))
		})
	}
}

func TestNewWithWriter_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   []string
	}{
		{format: "text", want: []string{"level=INFO", "msg=\"session started\"", "query=\"red shoes\""}},
		{format: "json", want: []string{`"level":"INFO"`, `"msg":"session started"`, `"query":"red shoes"`}},
		{format: "pretty", want: []string{"INFO", "session started", "red shoes"}},
		{format: "unknown", want: []string{"level=INFO", "query=\"red shoes\""}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			l := logger.NewWithWriter(&buf, "info", tt.format)
			l.Info("session started", "query", "red shoes")
			l.Debug("page requested")

			out := buf.String()
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			assert.NotContains(t, out, "page requested")
		})
	}
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		level   string
		format  string
		emit    slog.Level
		visible bool
	}{
		{name: "debug at debug", level: "debug", format: "text", emit: slog.LevelDebug, visible: true},
		{name: "debug at debug pretty", level: "debug", format: "pretty", emit: slog.LevelDebug, visible: true},
		{name: "debug at info", level: "info", format: "json", emit: slog.LevelDebug},
		{name: "warn at warn", level: "warn", format: "json", emit: slog.LevelWarn, visible: true},
		{name: "info at warn pretty", level: "warn", format: "pretty", emit: slog.LevelInfo},
		{name: "warn at error", level: "error", format: "text", emit: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			l := logger.NewWithWriter(&buf, tt.level, tt.format)
			l.Log(t.Context(), tt.emit, "fetch completed")

			if tt.visible {
				assert.Contains(t, buf.String(), "fetch completed")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	t.Parallel()

	require.NotNil(t, logger.New("debug", "json"))

	d := logger.Discard()
	require.NotNil(t, d)
	assert.False(t, d.Enabled(t.Context(), slog.LevelDebug))
	d.Error("dropped")
}
