// Package main provides the entry point for the sitespider CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sitespider.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitespider",
		Short: "Sitemap generator driven by a headless-browser crawl",
		Long: `sitespider crawls a website with a pool of concurrent workers and writes
the discovered URLs as sitemaps.org XML sitemaps.

By default pages are rendered in headless Chrome so that client-side
navigation, lazy-loaded listings and "view more" widgets are crawled too.
Use --no-browser for a plain HTTP fetch of server-rendered sites.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
