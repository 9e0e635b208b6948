package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitespider/internal/config"
	"github.com/nao1215/sitespider/internal/database"
	"github.com/nao1215/sitespider/internal/report"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [run-id]",
		Short: "Regenerate sitemaps from an archived crawl run",
		Long: `Export reads a crawl run archived with 'crawl --save' and regenerates
its sitemap files without re-crawling. Without a run ID the most recent
run is exported.

Examples:
  # List archived runs
  sitespider export --list

  # Export the most recent run
  sitespider export

  # Export a specific run with gzip compression
  sitespider export 0f8fad5b-d9cb-469f-a165-70867728950e --gzip -o sitemaps/`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExportCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List archived runs instead of exporting")
	cmd.Flags().String("db-dir", config.DefaultDBDir(),
		"Directory of the crawl archive database")
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Directory sitemap files are written to")
	cmd.Flags().Int("sitemap-limit", config.DefaultMaxURLsPerSitemap,
		"Maximum URLs per sitemap file before splitting")
	cmd.Flags().BoolP("gzip", "z", false,
		"Write gzip-compressed sitemap files (.xml.gz)")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	// The archive must already exist; export never creates it.
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no crawl archive found (run 'sitespider crawl --save' first): %w", err)
	}
	defer db.Close()

	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if list {
		return listRuns(cmd, db)
	}

	runID := ""
	if len(args) > 0 {
		runID = args[0]
	}
	if runID == "" {
		meta, err := db.LatestRun(cmd.Context())
		if err != nil {
			return err
		}
		if meta == nil {
			return fmt.Errorf("crawl archive is empty")
		}
		runID = meta.RunID
	}

	entries, err := db.GetRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if entries == nil {
		return fmt.Errorf("run not found: %s", runID)
	}

	outputDir, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("sitemap-limit")
	if err != nil {
		return err
	}
	gzipped, err := cmd.Flags().GetBool("gzip")
	if err != nil {
		return err
	}

	writer := report.NewSitemapWriter(outputDir,
		report.WithSitemapLimit(limit),
		report.WithGzip(gzipped),
	)
	files, err := writer.Write(entries)
	if err != nil {
		return fmt.Errorf("failed to write sitemaps: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d URLs from run %s:\n", len(entries), runID)
	for _, file := range files {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", file)
	}
	return nil
}

// listRuns prints the archived runs, most recent first.
func listRuns(cmd *cobra.Command, db *database.CrawlDB) error {
	runs, err := db.ListRuns(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No archived runs.")
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %6d pages  %s\n",
			run.RunID,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.PageCount,
			run.Hosts,
		)
	}
	return nil
}
