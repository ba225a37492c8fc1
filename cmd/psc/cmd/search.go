package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/product-search/internal/api/client"
)

func searchCmd() *cobra.Command {
	var req apiclient.SearchRequest

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fetch one page of catalog results through the server",
		Example: `  psc search "running shoes"
  psc search "running shoes" --page 2 --limit 50`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Query = args[0]
			res, err := newClient().Search(cmd.Context(), req)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(res)
			}
			if len(res.Products) == 0 {
				fmt.Println("No products found.")
				return nil
			}
			offset := (max(res.Page, 1) - 1) * len(res.Products)
			if req.Limit > 0 {
				offset = (max(res.Page, 1) - 1) * req.Limit
			}
			if err := printProductsTable(os.Stdout, offset, res.Products); err != nil {
				return err
			}
			more := ""
			if res.HasMore {
				more = " More available with --page."
			}
			fmt.Printf("\nPage %d, %d total.%s\n", res.Page, res.Total, more)
			return nil
		},
	}
	cmd.Flags().IntVar(&req.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&req.Limit, "limit", 0, "results per page (default from server)")
	cmd.Flags().StringVar(&req.Sort, "sort", "", "catalog sort expression")

	return cmd
}
