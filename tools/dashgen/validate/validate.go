// Package validate checks generated dashboards and rules for PromQL syntax
// errors and references to metrics the service does not export.
package validate

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/product-search/tools/dashgen/rules"
)

// Result collects validation findings. Errors fail generation, warnings
// are reported only.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether no errors were found.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

// Err returns the errors as a single error prefixed with name, or nil.
func (r Result) Err(name string) error {
	if r.Ok() {
		return nil
	}
	return fmt.Errorf("%s: %s", name, strings.Join(r.Errors, "; "))
}

func (r *Result) merge(o Result) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// Expr parses expr and checks every metric it selects against known.
func Expr(expr string, known map[string]bool) Result {
	var res Result

	node, err := parser.ParseExpr(expr)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("parsing %q: %v", expr, err))
		return res
	}

	for _, name := range metricNames(node) {
		if known[baseMetric(name)] {
			continue
		}
		res.Errors = append(res.Errors, fmt.Sprintf("unknown metric %q in %q", name, expr))
	}
	return res
}

// Dashboard validates every query expression in the dashboard.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var res Result

	data, err := json.Marshal(dash)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("encoding dashboard: %v", err))
		return res
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("decoding dashboard: %v", err))
		return res
	}

	exprs := collectExprs(doc)
	if len(exprs) == 0 {
		res.Warnings = append(res.Warnings, "dashboard has no queries")
	}
	for _, expr := range exprs {
		res.merge(Expr(expr, known))
	}
	return res
}

// Rules validates the expressions of a rule CR. Recording rule names
// must follow the level:metric:operations convention.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var res Result
	for _, r := range cr.Rules() {
		switch {
		case r.Record != "" && strings.Count(r.Record, ":") != 2:
			res.Errors = append(res.Errors, fmt.Sprintf("recording rule %q is not level:metric:operations", r.Record))
		case r.Record == "" && r.Alert == "":
			res.Errors = append(res.Errors, fmt.Sprintf("rule %q has neither record nor alert", r.Expr))
		}
		res.merge(Expr(r.Expr, known))
	}
	return res
}

func metricNames(node parser.Node) []string {
	seen := make(map[string]bool)
	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		if vs, ok := n.(*parser.VectorSelector); ok && vs.Name != "" {
			seen[vs.Name] = true
		}
		return nil
	})

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// baseMetric strips the series suffixes a histogram adds to its name.
func baseMetric(name string) string {
	for _, suffix := range []string{"_bucket", "_sum", "_count"} {
		if base, ok := strings.CutSuffix(name, suffix); ok {
			return base
		}
	}
	return name
}

func collectExprs(v any) []string {
	var out []string
	switch v := v.(type) {
	case map[string]any:
		if expr, ok := v["expr"].(string); ok && expr != "" {
			out = append(out, expr)
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, collectExprs(v[k])...)
		}
	case []any:
		for _, item := range v {
			out = append(out, collectExprs(item)...)
		}
	}
	return out
}
