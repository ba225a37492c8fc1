package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/product-search/internal/metrics"
)

const (
	defaultSearchURL = "https://api.zappos.com/Search"
	defaultLimit     = 20
	maxSearchBody    = 4 << 20
	tracerName       = "github.com/donaldgifford/product-search/internal/catalog"
)

// StatusError is returned when the catalog answers with a non-200 status.
// The catalog answers requests past the last page this way.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog API error (status %d): %s", e.StatusCode, e.Body)
}

// HTTPClient implements Client against the catalog search endpoint.
type HTTPClient struct {
	auth        Authorizer
	searchURL   string
	limit       int
	client      *http.Client
	rateLimiter *RateLimiter
	tracer      trace.Tracer
}

// HTTPOption configures the HTTPClient.
type HTTPOption func(*HTTPClient)

// WithSearchURL overrides the default search endpoint.
func WithSearchURL(u string) HTTPOption {
	return func(c *HTTPClient) {
		c.searchURL = u
	}
}

// WithPageSize sets the page size used when a request does not set one.
func WithPageSize(n int) HTTPOption {
	return func(c *HTTPClient) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		c.client = hc
	}
}

// WithRateLimiter makes every Search wait on r first.
func WithRateLimiter(r *RateLimiter) HTTPOption {
	return func(c *HTTPClient) {
		c.rateLimiter = r
	}
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) HTTPOption {
	return func(c *HTTPClient) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// NewHTTPClient creates a catalog client. auth may be nil for open
// endpoints such as the local mock catalog.
func NewHTTPClient(auth Authorizer, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		auth:      auth,
		searchURL: defaultSearchURL,
		limit:     defaultLimit,
		client:    &http.Client{Timeout: 30 * time.Second},
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PageSize returns the default page size.
func (c *HTTPClient) PageSize() int {
	return c.limit
}

// Search implements Client.
func (c *HTTPClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	ctx, span := c.tracer.Start(ctx, "catalog.Search", trace.WithAttributes(
		attribute.String("catalog.query", req.Query),
		attribute.Int("catalog.page", req.Page),
	))
	defer span.End()

	resp, err := c.search(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("catalog.results", len(resp.Items)),
		attribute.Int("catalog.total", resp.Total),
		attribute.Bool("catalog.has_more", resp.HasMore),
	)
	return resp, nil
}

func (c *HTTPClient) search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyLimitReached) {
				metrics.CatalogDailyLimitHits.Inc()
			}
			metrics.CatalogAPIErrorsTotal.WithLabelValues("rate_limit").Inc()
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		metrics.CatalogDailyUsage.Set(float64(c.rateLimiter.DailyCount()))
	}
	metrics.CatalogAPICallsTotal.Inc()

	page := max(req.Page, 1)
	limit := req.Limit
	if limit <= 0 {
		limit = c.limit
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildSearchURL(req.Query, page, limit, req.Sort), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	if c.auth != nil {
		if err := c.auth.Authorize(ctx, httpReq); err != nil {
			metrics.CatalogAPIErrorsTotal.WithLabelValues("auth").Inc()
			return nil, fmt.Errorf("authorizing request: %w", err)
		}
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		metrics.CatalogAPIErrorsTotal.WithLabelValues("transport").Inc()
		return nil, fmt.Errorf("executing search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchBody))
	if err != nil {
		metrics.CatalogAPIErrorsTotal.WithLabelValues("transport").Inc()
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.CatalogAPIErrorsTotal.WithLabelValues("status").Inc()
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var apiResp searchAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		metrics.CatalogAPIErrorsTotal.WithLabelValues("decode").Inc()
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	total, known := parseTotal(apiResp.TotalResultCount)
	return &SearchResponse{
		Items:       apiResp.Results,
		Total:       total,
		CurrentPage: page,
		Limit:       limit,
		HasMore:     hasMore(len(apiResp.Results), page, limit, total, known),
	}, nil
}

// hasMore reports whether a page after this one may hold results. Without
// a usable total a full page counts as more; a short or empty page ends it.
func hasMore(n, page, limit, total int, known bool) bool {
	if n == 0 {
		return false
	}
	if !known {
		return n >= limit
	}
	return page*limit < total
}

func (c *HTTPClient) buildSearchURL(query string, page, limit int, sort string) string {
	params := url.Values{}
	params.Set("term", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	if sort != "" {
		params.Set("sort", sort)
	}
	return c.searchURL + "?" + params.Encode()
}
