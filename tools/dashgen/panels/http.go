package panels

import "github.com/grafana/grafana-foundation-sdk/go/timeseries"

// RequestRate shows HTTP requests per second.
func RequestRate() *timeseries.PanelBuilder {
	return newTimeseries("Request Rate", "HTTP requests per second", TSWidth).
		WithTarget(PromQuery(`ps:http_requests:rate5m`, "req/s", "A")).
		Unit("reqps").
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip())
}

// LatencyPercentiles shows p50, p95 and p99 HTTP request latency.
func LatencyPercentiles() *timeseries.PanelBuilder {
	const h = "ps_http_request_duration_seconds"
	return newTimeseries("Latency Percentiles", "HTTP request duration percentiles", TSWidth).
		WithTarget(PromQuery(Quantile("0.50", h), "p50", "A")).
		WithTarget(PromQuery(Quantile("0.95", h), "p95", "B")).
		WithTarget(PromQuery(Quantile("0.99", h), "p99", "C")).
		Unit("s").
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip())
}

// ErrorRate shows 5xx responses as a percentage of all requests.
func ErrorRate() *timeseries.PanelBuilder {
	return newTimeseries("Error Rate %", "HTTP 5xx error rate as percentage of total requests", TSWidth).
		WithTarget(PromQuery(`ps:http_errors:rate5m / ps:http_requests:rate5m * 100`, "error %", "A")).
		Unit("percent").
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemeThresholds())
}
