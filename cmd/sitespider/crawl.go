package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitespider/internal/config"
	"github.com/nao1215/sitespider/internal/crawler"
	"github.com/nao1215/sitespider/internal/database"
	"github.com/nao1215/sitespider/internal/log"
	"github.com/nao1215/sitespider/internal/model"
	"github.com/nao1215/sitespider/internal/render"
	"github.com/nao1215/sitespider/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url...]",
		Short: "Crawl a website and write XML sitemaps",
		Long: `Crawl visits a website with a pool of concurrent workers and writes the
discovered URLs as sitemaps.org XML sitemaps.

Pages are rendered in headless Chrome by default so that lazy-loaded
listings, "view more" widgets and script-built navigation are discovered
too. URLs are normalized (tracking parameters removed, query sorted,
fragments stripped) and deduplicated before they enter the sitemap.

The crawl scope is the set of allowed hosts. Links pointing outside the
scope are dropped. When --host is not given, the scope is derived from
the seed URLs.

Examples:
  # Crawl a site, scope derived from the seed
  sitespider crawl https://www.example.com

  # Crawl across www and apex host
  sitespider crawl --host example.com --host www.example.com https://www.example.com

  # Server-rendered site, no browser needed
  sitespider crawl --no-browser https://www.example.com

  # Split output and archive the run for later export
  sitespider crawl --gzip --save https://www.example.com

  # Use a configuration file
  sitespider crawl -c myconfig.yaml`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Scope flags
	cmd.Flags().StringSliceP("host", "H", nil,
		"Allowed host (repeatable, default: hosts of the seed URLs)")

	// Crawl behavior flags
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of concurrent crawl workers")
	cmd.Flags().DurationP("nav-timeout", "t", config.DefaultNavTimeout,
		"Navigation timeout per page")
	cmd.Flags().DurationP("delay", "d", config.DefaultRequestDelay,
		"Pause each worker observes between navigations")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of unique pages to visit")
	cmd.Flags().Int("click-retry", config.DefaultClickRetryLimit,
		"Maximum clicks per 'view more' widget per page")
	cmd.Flags().Int("scroll-rounds", config.DefaultScrollRounds,
		"Maximum scroll-to-bottom rounds per page")
	cmd.Flags().Int("lookahead", config.DefaultPaginationLookahead,
		"Successor pages probed per numeric page parameter")
	cmd.Flags().Bool("no-browser", false,
		"Fetch pages over plain HTTP instead of headless Chrome")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent sent with every request")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitespider in current or home directory)")

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Directory sitemap files are written to")
	cmd.Flags().Int("sitemap-limit", config.DefaultMaxURLsPerSitemap,
		"Maximum URLs per sitemap file before splitting")
	cmd.Flags().BoolP("gzip", "z", false,
		"Write gzip-compressed sitemap files (.xml.gz)")
	cmd.Flags().String("summary", "",
		"Write a Markdown crawl summary to the given file")
	cmd.Flags().String("xlsx", "",
		"Write a spreadsheet URL inventory to the given file")
	cmd.Flags().BoolP("save", "S", false,
		"Archive the run in the local database for 'sitespider export'")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// buildCrawlConfig creates a Config from cobra command flags and the
// optional configuration file. Precedence: defaults < file < flags.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	configFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly named a config file, it must exist.
	// Otherwise a missing file just means flag-only configuration.
	configPath := config.FindConfigFile(configFlag)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
		cfg.ConfigFilePath = configPath
	} else if configFlag != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configFlag)
	}

	// Flags override file values only when explicitly set.
	if cmd.Flags().Changed("concurrency") {
		if cfg.Concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("nav-timeout") {
		if cfg.NavTimeout, err = cmd.Flags().GetDuration("nav-timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("delay") {
		if cfg.RequestDelay, err = cmd.Flags().GetDuration("delay"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-pages") {
		if cfg.MaxPages, err = cmd.Flags().GetInt("max-pages"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("click-retry") {
		if cfg.ClickRetryLimit, err = cmd.Flags().GetInt("click-retry"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("scroll-rounds") {
		if cfg.ScrollRounds, err = cmd.Flags().GetInt("scroll-rounds"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("lookahead") {
		if cfg.PaginationLookahead, err = cmd.Flags().GetInt("lookahead"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("user-agent") {
		if cfg.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("output") {
		if cfg.OutputDir, err = cmd.Flags().GetString("output"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("sitemap-limit") {
		if cfg.MaxURLsPerSitemap, err = cmd.Flags().GetInt("sitemap-limit"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("gzip") {
		if cfg.GzipSitemaps, err = cmd.Flags().GetBool("gzip"); err != nil {
			return nil, err
		}
	}

	noBrowser, err := cmd.Flags().GetBool("no-browser")
	if err != nil {
		return nil, err
	}
	cfg.UseBrowser = !noBrowser

	if cfg.SummaryFile, err = cmd.Flags().GetString("summary"); err != nil {
		return nil, err
	}
	if cfg.XLSXFile, err = cmd.Flags().GetString("xlsx"); err != nil {
		return nil, err
	}

	save, err := cmd.Flags().GetBool("save")
	if err != nil {
		return nil, err
	}
	if save {
		cfg.DBDir = config.DefaultDBDir()
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments are seed URLs, appended to any file-provided
	// seeds.
	cfg.Seeds = append(cfg.Seeds, args...)

	hosts, err := cmd.Flags().GetStringSlice("host")
	if err != nil {
		return nil, err
	}
	if len(hosts) > 0 {
		cfg.AllowedHosts = hosts
	}
	if len(cfg.AllowedHosts) == 0 {
		cfg.AllowedHosts = hostsOf(cfg.Seeds)
	}

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// hostsOf returns the unique hosts of the given URLs, in input order.
func hostsOf(rawURLs []string) []string {
	seen := make(map[string]bool)
	var hosts []string
	for _, raw := range rawURLs {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		host := strings.ToLower(u.Host)
		if !seen[host] {
			seen[host] = true
			hosts = append(hosts, host)
		}
	}
	return hosts
}

// runCrawl executes the crawl and writes all configured outputs.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	started := time.Now()

	engine, err := newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Error("failed to close renderer", "error", err)
		}
	}()

	coord := crawler.New(cfg, engine, crawler.WithLogger(logger))
	logger.Info("crawl configured",
		"runID", coord.RunID(),
		"hosts", cfg.AllowedHosts,
		"seeds", cfg.Seeds,
		"concurrency", cfg.Concurrency,
		"browser", cfg.UseBrowser,
	)

	entries, runErr := coord.Run(ctx)
	interrupted := errors.Is(runErr, context.Canceled)
	if runErr != nil && !interrupted {
		return fmt.Errorf("crawl failed: %w", runErr)
	}
	if interrupted {
		logger.Warn("crawl interrupted, writing partial results", "pages", len(entries))
	}

	files, err := writeOutputs(cfg, logger, coord.RunID(), entries, started, interrupted)
	if err != nil {
		return err
	}

	logger.Info("crawl finished",
		"runID", coord.RunID(),
		"pages", len(entries),
		"duration", time.Since(started).Round(time.Second),
		"sitemaps", len(files),
	)
	return nil
}

// newEngine creates the renderer selected by the configuration.
func newEngine(ctx context.Context, cfg *config.Config) (render.Engine, error) {
	if !cfg.UseBrowser {
		return render.NewFetchEngine(cfg.UserAgent,
			render.WithFetchMaxBodySize(cfg.MaxBodySize),
		), nil
	}
	engine, err := render.NewChromeEngine(ctx, cfg.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to start headless browser (use --no-browser for plain HTTP): %w", err)
	}
	return engine, nil
}

// writeOutputs generates every configured artifact for the crawl result
// and returns the sitemap file paths. Output generation deliberately
// ignores the cancelled crawl context so an interrupted run still
// produces a usable partial sitemap.
func writeOutputs(cfg *config.Config, logger *slog.Logger, runID string, entries []model.SitemapEntry, started time.Time, interrupted bool) ([]string, error) {
	writer := report.NewSitemapWriter(cfg.OutputDir,
		report.WithSitemapLimit(cfg.MaxURLsPerSitemap),
		report.WithGzip(cfg.GzipSitemaps),
	)
	files, err := writer.Write(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to write sitemaps: %w", err)
	}
	for _, file := range files {
		logger.Info("wrote sitemap", "file", file)
	}

	if cfg.DBDir != "" {
		if err := saveRun(cfg, runID, entries); err != nil {
			return files, err
		}
		logger.Info("archived run", "runID", runID, "dir", cfg.DBDir)
	}

	if cfg.SummaryFile != "" {
		summary := &report.Summary{
			RunID:        runID,
			Hosts:        cfg.AllowedHosts,
			StartedAt:    started,
			FinishedAt:   time.Now(),
			Interrupted:  interrupted,
			SitemapFiles: files,
			Entries:      entries,
		}
		if err := writeSummaryFile(cfg.SummaryFile, summary); err != nil {
			return files, err
		}
		logger.Info("wrote summary", "file", cfg.SummaryFile)
	}

	if cfg.XLSXFile != "" {
		if err := report.NewXLSXWriter(cfg.XLSXFile).Write(entries); err != nil {
			return files, fmt.Errorf("failed to write spreadsheet: %w", err)
		}
		logger.Info("wrote spreadsheet", "file", cfg.XLSXFile)
	}

	return files, nil
}

// saveRun archives the run in the local database.
func saveRun(cfg *config.Config, runID string, entries []model.SitemapEntry) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	hosts := strings.Join(cfg.AllowedHosts, ",")
	if err := db.SaveRun(context.Background(), runID, hosts, entries); err != nil {
		return fmt.Errorf("failed to archive run: %w", err)
	}
	return nil
}

// writeSummaryFile writes the Markdown summary to path.
func writeSummaryFile(path string, summary *report.Summary) error {
	f, err := os.Create(path) //nolint:gosec // user-provided output path is intentional
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer f.Close()

	if err := report.NewSummaryWriter(f).Write(summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return f.Close()
}
