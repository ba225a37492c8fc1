package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// CatalogCallsRate shows catalog search calls per second.
func CatalogCallsRate() *timeseries.PanelBuilder {
	return newTimeseries("API Calls Rate", "Catalog search API calls per second", ThirdWidth).
		WithTarget(PromQuery(`ps:catalog_api_calls:rate5m`, "calls/s", "A")).
		Unit("reqps")
}

// CatalogErrors shows catalog API errors by reason: rate_limit, auth,
// transport, status or decode.
func CatalogErrors() *timeseries.PanelBuilder {
	return newTimeseries("API Errors", "Catalog API errors per second by reason", ThirdWidth).
		WithTarget(PromQuery(SumRateBy("ps_catalog_api_errors_total", "reason"), "{{reason}}", "A")).
		Unit("reqps").
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip())
}

// CatalogDailyUsage shows rolling catalog usage against the daily limit.
func CatalogDailyUsage() *timeseries.PanelBuilder {
	return newTimeseries("Daily Usage vs Limit",
		fmt.Sprintf("Rolling 24h catalog API call count (limit: %d)", CatalogDailyLimit), ThirdWidth).
		WithTarget(PromQuery(Sel("ps_catalog_daily_usage"), "usage", "A")).
		Thresholds(ThresholdsGreenYellowRed(float64(CatalogDailyLimit)*0.8, float64(CatalogDailyLimit))).
		ColorScheme(ColorSchemeThresholds())
}

// CatalogLimitHits shows how often the daily limit was hit in 24h.
func CatalogLimitHits() *stat.PanelBuilder {
	return newStat("Limit Hits (24h)", "Times the catalog daily limit was reached in the last 24 hours",
		Increase("ps_catalog_daily_limit_hits_total", "24h")).
		Thresholds(ThresholdsGreenYellowRed(1, 3)).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
