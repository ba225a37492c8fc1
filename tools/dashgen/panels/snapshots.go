package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// SnapshotActivity shows snapshots saved and restored per hour.
func SnapshotActivity() *timeseries.PanelBuilder {
	return newTimeseries("Snapshots / hour", "Session snapshots saved and restored per hour", TSWidth).
		WithTarget(PromQuery(Increase("ps_snapshots_saved_total", "1h"), "saved", "A")).
		WithTarget(PromQuery(Increase("ps_snapshots_restored_total", "1h"), "restored", "B")).
		Legend(TableLegend("sum")).
		Tooltip(MultiTooltip())
}

// SnapshotsPruned shows snapshots removed by retention in 24h.
func SnapshotsPruned() *stat.PanelBuilder {
	return newStat("Pruned (24h)", "Snapshots deleted by the retention sweep in the last 24 hours",
		Increase("ps_snapshots_pruned_total", "24h"))
}

// NextPrune shows time until the retention sweep.
func NextPrune() *stat.PanelBuilder {
	return newStat("Next Prune", "Time until the next snapshot retention sweep",
		Sel("ps_scheduler_next_prune_timestamp")+" - time()").
		Unit("s").
		ColorMode(common.BigValueColorModeBackground)
}
