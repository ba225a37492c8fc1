// Package cmd implements the CLI commands for product-search.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "product-search",
	Short: "Browse a product catalog as an infinitely scrolling result list",
	Long: "An API-first service that hosts product search sessions: each session pages\n" +
		"through a retail catalog as its viewer scrolls, and can be snapshotted and\n" +
		"restored later. The browse command runs the same session in a terminal.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(browseCommand())
	rootCmd.AddCommand(searchCommand())
	rootCmd.AddCommand(versionCommand())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the root command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}
