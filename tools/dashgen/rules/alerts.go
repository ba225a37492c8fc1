package rules

import "fmt"

// catalogQuotaWarn is 80% of the default catalog daily limit.
const catalogQuotaWarn = 4000

// AlertRules returns the operational alerts for product-search.
func AlertRules() PrometheusRule {
	return newRule("ps-alerts", "ps-alerts", []Rule{
		alert("PsDown",
			`absent(up{job="product-search"})`, "2m", "critical",
			"Product Search is down",
			"The product-search job has been absent for more than 2 minutes."),
		alert("PsReadinessDown",
			`ps_readyz_up == 0`, "2m", "critical",
			"Product Search readiness check is failing",
			"The snapshot store has been unreachable for more than 2 minutes."),
		alert("PsHighErrorRate",
			`ps:http_errors:rate5m / ps:http_requests:rate5m > 0.05`, "5m", "warning",
			"High HTTP error rate on Product Search",
			"More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes."),
		alert("PsPageFetchFailures",
			`ps:page_fetch_failures:rate5m / ps:page_requests:rate5m > 0.1`, "5m", "warning",
			"Page fetches are failing",
			"More than 10% of result page fetches have failed over the last 5 minutes."),
		alert("PsCatalogErrors",
			`ps:catalog_api_errors:rate5m > 0.1`, "5m", "warning",
			"Catalog API error rate is elevated",
			"Catalog API errors are occurring at more than 0.1/s for the last 5 minutes."),
		alert("PsCatalogQuotaHigh",
			fmt.Sprintf(`ps_catalog_daily_usage > %d`, catalogQuotaWarn), "5m", "warning",
			"Catalog API daily usage is above 80% of the quota",
			fmt.Sprintf("Daily catalog API usage has exceeded %d calls (limit is 5000).", catalogQuotaWarn)),
		alert("PsCatalogLimitReached",
			`increase(ps_catalog_daily_limit_hits_total[5m]) > 0`, "0m", "critical",
			"Catalog API daily limit has been reached",
			"The catalog daily quota has been exhausted. Searches fail until it resets."),
	})
}
