package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/donaldgifford/product-search/internal/session"
)

// Fetcher adapts a Client to session.Fetcher.
type Fetcher struct {
	client Client
	limit  int
	sort   string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchLimit sets the page size requested from the catalog.
func WithFetchLimit(n int) FetcherOption {
	return func(f *Fetcher) {
		f.limit = n
	}
}

// WithSort sets the catalog sort expression, e.g. "price-asc".
func WithSort(s string) FetcherOption {
	return func(f *Fetcher) {
		f.sort = s
	}
}

// NewFetcher creates a Fetcher over c.
func NewFetcher(c Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{client: c}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch implements session.Fetcher. A page the catalog reports as the last
// one is marked Final.
func (f *Fetcher) Fetch(ctx context.Context, query string, page session.PageToken) (session.Page, error) {
	n := page.Int()
	if n < 1 {
		return session.Page{}, fmt.Errorf("%w: %q", session.ErrInvalidPageToken, page)
	}

	resp, err := f.client.Search(ctx, SearchRequest{
		Query: strings.TrimSpace(query),
		Page:  n,
		Limit: f.limit,
		Sort:  f.sort,
	})
	if err != nil {
		return session.Page{}, fmt.Errorf("searching catalog: %w", err)
	}

	return session.Page{
		Records: ToProducts(resp.Items),
		Final:   !resp.HasMore,
	}, nil
}
