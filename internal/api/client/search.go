package client

import (
	"context"

	domain "github.com/donaldgifford/product-search/pkg/types"
)

// SearchRequest is a one-off catalog search.
type SearchRequest struct {
	Query string `json:"query"`
	Page  int    `json:"page,omitempty"`
	Limit int    `json:"limit,omitempty"`
	Sort  string `json:"sort,omitempty"`
}

// SearchResult is one page of catalog results.
type SearchResult struct {
	Products []domain.Product `json:"products"`
	Page     int              `json:"page"`
	Total    int              `json:"total"`
	HasMore  bool             `json:"has_more"`
}

// Search fetches one page of catalog results without creating a session.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	var res SearchResult
	if err := c.post(ctx, "/api/v1/search", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
