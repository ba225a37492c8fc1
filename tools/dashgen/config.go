package main

import "errors"

// KnownMetrics is the set of metric names exported by product-search plus
// recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"ps_http_request_duration_seconds": true,
	"ps_http_requests_total":           true,

	// Health metrics.
	"ps_healthz_up": true,
	"ps_readyz_up":  true,

	// Session metrics.
	"ps_sessions_active":                 true,
	"ps_sessions_evicted_total":          true,
	"ps_page_requests_total":             true,
	"ps_load_more_triggers_total":        true,
	"ps_page_fetch_duration_seconds":     true,
	"ps_page_fetch_failures_total":       true,
	"ps_stale_completions_total":         true,
	"ps_notices_total":                   true,
	"ps_scheduler_next_eviction_timestamp": true,

	// Catalog API metrics.
	"ps_catalog_api_calls_total":        true,
	"ps_catalog_api_errors_total":       true,
	"ps_catalog_daily_usage":            true,
	"ps_catalog_daily_limit_hits_total": true,

	// Snapshot metrics.
	"ps_snapshots_saved_total":          true,
	"ps_snapshots_restored_total":       true,
	"ps_snapshots_pruned_total":         true,
	"ps_scheduler_next_prune_timestamp": true,

	// Recording rules.
	"ps:http_requests:rate5m":        true,
	"ps:http_errors:rate5m":          true,
	"ps:page_requests:rate5m":        true,
	"ps:page_fetch_failures:rate5m":  true,
	"ps:catalog_api_calls:rate5m":    true,
	"ps:catalog_api_errors:rate5m":   true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
