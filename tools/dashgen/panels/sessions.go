package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// ActiveSessions shows the number of live sessions.
func ActiveSessions() *stat.PanelBuilder {
	return newStat("Active Sessions", "Search sessions currently held by the server", Sel("ps_sessions_active")).
		GraphMode(common.BigValueGraphModeArea)
}

// NextEviction shows time until the idle session sweep.
func NextEviction() *stat.PanelBuilder {
	return newStat("Next Eviction", "Time until the next idle session sweep",
		Sel("ps_scheduler_next_eviction_timestamp")+" - time()").
		Unit("s").
		ColorMode(common.BigValueColorModeBackground)
}

// PageRequests shows first-page and load-more requests per minute next
// to the scroll triggers that caused them.
func PageRequests() *timeseries.PanelBuilder {
	return newTimeseries("Page Requests / min", "Pages requested per minute by kind", ThirdWidth).
		WithTarget(PromQuery(SumRateBy("ps_page_requests_total", "kind")+" * 60", "{{kind}}", "A")).
		WithTarget(PromQuery(Rate("ps_load_more_triggers_total", "5m")+" * 60", "triggers", "B")).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip())
}

// PageFetchLatency shows p50 and p95 page fetch duration.
func PageFetchLatency() *timeseries.PanelBuilder {
	const h = "ps_page_fetch_duration_seconds"
	return newTimeseries("Page Fetch Duration", "Time to fetch one page from the catalog", ThirdWidth).
		WithTarget(PromQuery(Quantile("0.50", h), "p50", "A")).
		WithTarget(PromQuery(Quantile("0.95", h), "p95", "B")).
		Unit("s")
}

// PageFailures shows failed fetches and discarded stale completions.
func PageFailures() *timeseries.PanelBuilder {
	return newTimeseries("Failed / Stale Pages",
		"Page fetch failures and discarded stale completions per minute", ThirdWidth).
		WithTarget(PromQuery(`ps:page_fetch_failures:rate5m * 60`, "failures", "A")).
		WithTarget(PromQuery(Rate("ps_stale_completions_total", "5m")+" * 60", "stale", "B")).
		Thresholds(ThresholdsGreenYellowRed(0.1, 1)).
		ColorScheme(ColorSchemeThresholds())
}

// NoticesRate shows user notices per minute by kind.
func NoticesRate() *timeseries.PanelBuilder {
	return newTimeseries("Notices / min", "No-results and no-more-items notices per minute", TSWidth).
		WithTarget(PromQuery(SumRateBy("ps_notices_total", "kind")+" * 60", "{{kind}}", "A")).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip())
}

// EvictionsRate shows idle sessions evicted per hour.
func EvictionsRate() *timeseries.PanelBuilder {
	return newTimeseries("Evictions / hour", "Idle sessions evicted per hour", TSWidth).
		WithTarget(PromQuery(Increase("ps_sessions_evicted_total", "1h"), "evicted", "A"))
}
