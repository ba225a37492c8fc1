// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/product-search/tools/dashgen/panels"
)

// BuildOverview constructs the PS Overview dashboard with all metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("PS Overview").
		Uid("ps-overview").
		Tags([]string{"ps", "product-search"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.QuotaGauge()).
		WithPanel(panels.UptimeStat()))

	// Row 2: HTTP.
	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	// Row 3: Sessions.
	b.WithRow(dashboard.NewRowBuilder("Sessions").
		WithPanel(panels.ActiveSessions()).
		WithPanel(panels.NextEviction()).
		WithPanel(panels.PageRequests()).
		WithPanel(panels.PageFetchLatency()).
		WithPanel(panels.PageFailures()).
		WithPanel(panels.NoticesRate()).
		WithPanel(panels.EvictionsRate()))

	// Row 4: Catalog API.
	b.WithRow(dashboard.NewRowBuilder("Catalog API").
		WithPanel(panels.CatalogCallsRate()).
		WithPanel(panels.CatalogErrors()).
		WithPanel(panels.CatalogDailyUsage()).
		WithPanel(panels.CatalogLimitHits()))

	// Row 5: Snapshots.
	b.WithRow(dashboard.NewRowBuilder("Snapshots").
		WithPanel(panels.SnapshotActivity()).
		WithPanel(panels.SnapshotsPruned()).
		WithPanel(panels.NextPrune()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
