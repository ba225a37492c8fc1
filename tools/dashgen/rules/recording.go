package rules

// RecordingRules returns the pre-computed rates used by dashboards and
// alert rules.
func RecordingRules() PrometheusRule {
	return newRule("ps-recording-rules", "ps-recording", []Rule{
		{Record: "ps:http_requests:rate5m", Expr: `sum(rate(ps_http_requests_total[5m]))`},
		{Record: "ps:http_errors:rate5m", Expr: `sum(rate(ps_http_requests_total{status=~"5.."}[5m]))`},
		{Record: "ps:page_requests:rate5m", Expr: `sum(rate(ps_page_requests_total[5m]))`},
		{Record: "ps:page_fetch_failures:rate5m", Expr: `rate(ps_page_fetch_failures_total[5m])`},
		{Record: "ps:catalog_api_calls:rate5m", Expr: `rate(ps_catalog_api_calls_total[5m])`},
		{Record: "ps:catalog_api_errors:rate5m", Expr: `sum(rate(ps_catalog_api_errors_total[5m]))`},
	})
}
