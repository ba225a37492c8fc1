package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/product-search/internal/catalog"
)

func searchCommand() *cobra.Command {
	var (
		searchPage  int
		searchLimit int
	)

	searchCmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Fetch one page of catalog results",
		Long: "Queries the configured catalog directly, without a server or session, and\n" +
			"prints the converted products as JSON. Useful for checking catalog credentials.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], searchPage, searchLimit)
		},
	}
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "page number")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum number of results")

	return searchCmd
}

type searchOutput struct {
	Query    string `json:"query"`
	Page     int    `json:"page"`
	Total    int    `json:"total"`
	HasMore  bool   `json:"has_more"`
	Products any    `json:"products"`
}

func runSearch(cmd *cobra.Command, query string, page, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := newCatalogClient(&cfg.Catalog)
	resp, err := client.Search(cmd.Context(), catalog.SearchRequest{
		Query: query,
		Page:  page,
		Limit: limit,
		Sort:  cfg.Catalog.Sort,
	})
	if err != nil {
		return fmt.Errorf("searching catalog: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(searchOutput{
		Query:    query,
		Page:     resp.CurrentPage,
		Total:    resp.Total,
		HasMore:  resp.HasMore,
		Products: catalog.ToProducts(resp.Items),
	})
}
