package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistered(t *testing.T) {
	t.Parallel()

	// Verify all metrics are non-nil (registered via promauto on package init).
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, HealthzUp)
	assert.NotNil(t, ReadyzUp)
	assert.NotNil(t, SessionsActive)
	assert.NotNil(t, SessionsEvictedTotal)
	assert.NotNil(t, PageRequestsTotal)
	assert.NotNil(t, LoadMoreTriggersTotal)
	assert.NotNil(t, PageFetchDuration)
	assert.NotNil(t, PageFetchFailuresTotal)
	assert.NotNil(t, StaleCompletionsTotal)
	assert.NotNil(t, NoticesTotal)
	assert.NotNil(t, CatalogAPICallsTotal)
	assert.NotNil(t, CatalogAPIErrorsTotal)
	assert.NotNil(t, CatalogDailyUsage)
	assert.NotNil(t, CatalogDailyLimitHits)
	assert.NotNil(t, SnapshotsSavedTotal)
	assert.NotNil(t, SnapshotsRestoredTotal)
	assert.NotNil(t, SnapshotsPrunedTotal)
	assert.NotNil(t, SchedulerNextEvictionTimestamp)
	assert.NotNil(t, SchedulerNextPruneTimestamp)
}

func TestMetricsNamespace(t *testing.T) {
	t.Parallel()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	var found *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "ps_sessions_active" {
			found = mf
			break
		}
	}
	require.NotNil(t, found, "ps_sessions_active not gathered")
	assert.Equal(t, dto.MetricType_GAUGE, found.GetType())
}
