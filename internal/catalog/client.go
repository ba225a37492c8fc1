// Package catalog provides a retail catalog search API client abstracted
// behind interfaces for testability, and the adapter that lets search
// sessions page through it.
package catalog

import (
	"context"
	"net/http"
)

// SearchRequest defines the parameters for one page of a catalog search.
type SearchRequest struct {
	Query string
	Page  int // 1-based
	Limit int
	Sort  string
}

// SearchResponse holds one page of catalog search results.
type SearchResponse struct {
	Items       []ProductSummary
	Total       int
	CurrentPage int
	Limit       int
	HasMore     bool
}

// Client defines the interface for querying the catalog.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// Authorizer attaches credentials to an outgoing catalog request.
type Authorizer interface {
	Authorize(ctx context.Context, req *http.Request) error
}
