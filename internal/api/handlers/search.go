package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/product-search/internal/catalog"
	domain "github.com/donaldgifford/product-search/pkg/types"
)

// SearchHandler handles one-off catalog searches outside of a session.
type SearchHandler struct {
	client catalog.Client
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(client catalog.Client) *SearchHandler {
	return &SearchHandler{client: client}
}

// SearchInput is the request body for the search endpoint.
type SearchInput struct {
	Body struct {
		Query string `json:"query" minLength:"1" doc:"Catalog search term" example:"red shoes"`
		Page  int    `json:"page,omitempty" minimum:"1" doc:"1-based page number (default 1)" example:"1"`
		Limit int    `json:"limit,omitempty" minimum:"1" maximum:"100" doc:"Results per page (default from config)" example:"20"`
		Sort  string `json:"sort,omitempty" doc:"Catalog sort expression"`
	}
}

// SearchOutput is the response body for the search endpoint.
type SearchOutput struct {
	Body struct {
		Products []domain.Product `json:"products" doc:"Converted catalog results"`
		Page     int              `json:"page" doc:"Page that was fetched"`
		Total    int              `json:"total" doc:"Total matching items"`
		HasMore  bool             `json:"has_more" doc:"Whether more pages are available"`
	}
}

// Search proxies a single page request to the catalog.
func (h *SearchHandler) Search(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	page := max(input.Body.Page, 1)

	resp, err := h.client.Search(ctx, catalog.SearchRequest{
		Query: input.Body.Query,
		Page:  page,
		Limit: input.Body.Limit,
		Sort:  input.Body.Sort,
	})
	if err != nil {
		return nil, huma.Error502BadGateway("catalog API error: " + err.Error())
	}

	out := &SearchOutput{}
	out.Body.Products = catalog.ToProducts(resp.Items)
	out.Body.Page = page
	out.Body.Total = resp.Total
	out.Body.HasMore = resp.HasMore
	return out, nil
}

// RegisterSearchRoutes registers search endpoints with the Huma API.
func RegisterSearchRoutes(api huma.API, h *SearchHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "search-catalog",
		Method:      http.MethodPost,
		Path:        "/api/v1/search",
		Summary:     "Search the catalog",
		Description: "Fetches one page of catalog results without creating a session.",
		Tags:        []string{"search"},
		Errors:      []int{http.StatusBadGateway},
	}, h.Search)
}
