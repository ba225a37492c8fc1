package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/gauge"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
)

// probeStat shows a 0/1 probe gauge on a red or green background.
func probeStat(title, description, metric string) *stat.PanelBuilder {
	return newStat(title, description, metric).
		Thresholds(ThresholdsRedGreen(1)).
		ColorMode(common.BigValueColorModeBackground).
		TextMode(common.BigValueTextModeValue)
}

// HealthzStat shows the liveness probe.
func HealthzStat() *stat.PanelBuilder {
	return probeStat("Healthz", "Health check status (1 = ok, 0 = failing)", "ps_healthz_up")
}

// ReadyzStat shows the readiness probe, which fails when the snapshot
// store is unreachable.
func ReadyzStat() *stat.PanelBuilder {
	return probeStat("Readyz", "Snapshot store reachable (1 = ready, 0 = not ready)", "ps_readyz_up")
}

// QuotaGauge shows catalog API daily usage as a percentage of the limit.
func QuotaGauge() *gauge.PanelBuilder {
	return gauge.NewPanelBuilder().
		Title("Catalog Quota %").
		Description("Daily catalog API usage as percentage of limit").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(fmt.Sprintf("%s / %d * 100", Sel("ps_catalog_daily_usage"), CatalogDailyLimit), "", "A")).
		Unit("percent").
		Min(0).
		Max(100).
		Thresholds(ThresholdsGreenYellowRed(80, 95)).
		ColorScheme(ColorSchemeThresholds())
}

// UptimeStat shows time since the server process started.
func UptimeStat() *stat.PanelBuilder {
	return newStat("Uptime", "Time since process start", "time() - "+Sel("process_start_time_seconds")).
		Unit("s")
}
