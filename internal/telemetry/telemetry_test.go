package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/donaldgifford/product-search/internal/config"
	"github.com/donaldgifford/product-search/internal/telemetry"
	"github.com/donaldgifford/product-search/pkg/logger"
)

func TestSetup_Disabled(t *testing.T) {
	t.Parallel()

	shutdown, err := telemetry.Setup(context.Background(), config.TelemetryConfig{}, "test", logger.Discard())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetup_Enabled(t *testing.T) {
	// Not parallel: installs global providers.
	cfg := config.Default().Telemetry
	cfg.Enabled = true
	cfg.Insecure = true
	cfg.Endpoint = "127.0.0.1:1"

	shutdown, err := telemetry.Setup(context.Background(), cfg, "test", logger.Discard())
	require.NoError(t, err)

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok)

	// Nothing is listening; only check shutdown returns.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx) //nolint:errcheck // export to a closed port may fail
}
