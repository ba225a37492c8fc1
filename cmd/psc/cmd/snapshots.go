package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/product-search/internal/api/client"
)

func snapshotsCmd() *cobra.Command {
	snapshotsRoot := &cobra.Command{
		Use:   "snapshots",
		Short: "Manage stored session snapshots",
	}

	snapshotsRoot.AddCommand(
		snapshotsListCmd(),
		snapshotsDeleteCmd(),
	)

	return snapshotsRoot
}

func snapshotsListCmd() *cobra.Command {
	var params apiclient.ListSnapshotsParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Example: `  psc snapshots list
  psc snapshots list --prefix shoe --order-by result_count`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := newClient().ListSnapshots(cmd.Context(), params)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(list)
			}
			if len(list.Snapshots) == 0 {
				fmt.Println("No snapshots found.")
				return nil
			}
			if err := printSnapshotsTable(os.Stdout, list.Snapshots); err != nil {
				return err
			}
			fmt.Printf("\nShowing %d of %d snapshots.\n", len(list.Snapshots), list.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&params.QueryPrefix, "prefix", "", "only snapshots whose query starts with this")
	cmd.Flags().IntVar(&params.MinResults, "min-results", 0, "minimum stored result count")
	cmd.Flags().IntVar(&params.Limit, "limit", 50, "number of snapshots")
	cmd.Flags().IntVar(&params.Offset, "offset", 0, "pagination offset")
	cmd.Flags().StringVar(&params.OrderBy, "order-by", "", "sort field (updated_at, created_at, query, result_count)")

	return cmd
}

func snapshotsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().DeleteSnapshot(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Snapshot %s deleted.\n", args[0])
			return nil
		},
	}
}
