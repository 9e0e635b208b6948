package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. These mirror what works in practice on
// mid-sized job-listing and directory sites, which are the typical
// targets of a sitemap crawl.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "sitespider"

	// DefaultConcurrency is the number of parallel workers, each holding
	// one renderer page. Eight keeps a headless Chrome instance within a
	// couple of gigabytes of memory while saturating most origins.
	DefaultConcurrency = 8

	// DefaultMaxPages is the hard cap on visited pages. It is set high
	// because the cap exists to stop runaway crawls on infinitely
	// generating sites (calendar pages, faceted search), not to bound
	// normal runs.
	DefaultMaxPages = 300000

	// DefaultNavTimeout bounds one navigation including script
	// execution. 45 seconds tolerates slow client-side rendering without
	// letting a dead page pin a worker for minutes.
	DefaultNavTimeout = 45 * time.Second

	// DefaultRequestDelay is the politeness pause each worker observes
	// between navigations.
	DefaultRequestDelay = 250 * time.Millisecond

	// DefaultClickRetryLimit is how many times a "view more" widget is
	// clicked before the crawler gives up on it. Listing widgets that
	// page 12 clicks deep are rare; beyond that the pagination
	// heuristic picks up the slack.
	DefaultClickRetryLimit = 12

	// DefaultScrollRounds is the maximum number of scroll-to-bottom
	// rounds used to trigger lazy loading. Scrolling stops early once
	// the page height stabilizes.
	DefaultScrollRounds = 8

	// DefaultPaginationLookahead is how many successor pages are
	// synthesized for candidates carrying a numeric page parameter.
	DefaultPaginationLookahead = 5

	// DefaultMaxURLsPerSitemap is the per-file URL ceiling from the
	// sitemaps.org protocol. Files are split and indexed beyond it.
	DefaultMaxURLsPerSitemap = 50000

	// DefaultOutputDir is where sitemap files are written.
	DefaultOutputDir = "output_sitemaps"

	// DefaultUserAgent identifies sitespider in HTTP requests.
	// A descriptive User-Agent lets site operators identify crawler
	// traffic in their logs.
	DefaultUserAgent = "sitespider/1.0 (+https://github.com/nao1215/sitespider)"

	// DefaultMaxBodySize limits how much of a response body the fetch
	// renderer reads.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB
)

// DefaultViewMoreSelectors matches the common shapes of "view more" /
// "load more" pagination widgets. Entries beginning with "text=" match
// buttons and links by trimmed text; the rest are CSS selectors.
func DefaultViewMoreSelectors() []string {
	return []string{
		"text=View More",
		"text=Show More",
		"text=More",
		"text=Load more",
		"text=See more",
		"button[aria-label*='more' i]",
		"button[aria-label*='load' i]",
		".view-more",
		".load-more",
		".show-more",
		".btn-more",
		".btn-load",
		"a.load-more",
		"[data-action='load-more']",
		"[data-load-more]",
		"[data-more]",
	}
}

// Config holds all options for one crawl run. It is populated from CLI
// flags and an optional YAML file, then passed by value through the
// application; nothing mutates it after Validate.
type Config struct {
	// AllowedHosts is the crawl scope: only URLs whose host appears
	// here (case-insensitive) are followed. Hosts may include a port.
	AllowedHosts []string

	// Seeds are the starting URLs. They are normalized before seeding;
	// a seed whose host is outside AllowedHosts is still visited, but
	// its out-of-scope links are not followed.
	Seeds []string

	// Concurrency is the number of crawl workers.
	Concurrency int

	// NavTimeout bounds a single page navigation.
	NavTimeout time.Duration

	// RequestDelay is the fixed per-worker pause between navigations.
	RequestDelay time.Duration

	// MaxPages stops the crawl after this many unique visited pages.
	MaxPages int

	// ClickRetryLimit caps clicks per "view more" selector per page.
	ClickRetryLimit int

	// ScrollRounds caps scroll-to-bottom rounds per page.
	ScrollRounds int

	// ViewMoreSelectors are the widget selectors to click during the
	// interaction phase.
	ViewMoreSelectors []string

	// PaginationLookahead is how many pages ahead the pagination
	// heuristic probes for each numeric page parameter it sees.
	PaginationLookahead int

	// UseBrowser selects the headless Chrome renderer. When false the
	// plain HTTP fetch renderer is used instead.
	UseBrowser bool

	// UserAgent is sent with every request by both renderers.
	UserAgent string

	// MaxBodySize caps the response body read by the fetch renderer.
	MaxBodySize int64

	// OutputDir is the directory sitemap files are written to.
	OutputDir string

	// MaxURLsPerSitemap is the per-file ceiling before the writer
	// splits output into numbered files plus an index.
	MaxURLsPerSitemap int

	// GzipSitemaps writes sitemap files gzip-compressed (.xml.gz).
	GzipSitemaps bool

	// SummaryFile, when set, is where the markdown crawl summary is
	// written. Empty disables the summary.
	SummaryFile string

	// XLSXFile, when set, is where the xlsx URL inventory is written.
	// Empty disables the export.
	XLSXFile string

	// DBDir, when set, is the directory of the SQLite database that
	// archives finished runs for later sitemap regeneration.
	// Empty disables persistence.
	DBDir string

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// ConfigFilePath is the YAML file the config was loaded from, empty
	// when only flags were used.
	ConfigFilePath string
}

// NewConfig returns a Config populated with defaults. AllowedHosts and
// Seeds start empty and must be provided before Validate passes.
func NewConfig() *Config {
	return &Config{
		Concurrency:         DefaultConcurrency,
		NavTimeout:          DefaultNavTimeout,
		RequestDelay:        DefaultRequestDelay,
		MaxPages:            DefaultMaxPages,
		ClickRetryLimit:     DefaultClickRetryLimit,
		ScrollRounds:        DefaultScrollRounds,
		ViewMoreSelectors:   DefaultViewMoreSelectors(),
		PaginationLookahead: DefaultPaginationLookahead,
		UseBrowser:          true,
		UserAgent:           DefaultUserAgent,
		MaxBodySize:         DefaultMaxBodySize,
		OutputDir:           DefaultOutputDir,
		MaxURLsPerSitemap:   DefaultMaxURLsPerSitemap,
	}
}

// Validate checks the configuration for consistency.
// It returns the first problem found as one of the package's sentinel
// errors so callers can match with errors.Is.
func (c *Config) Validate() error {
	if len(c.AllowedHosts) == 0 {
		return ErrNoAllowedHosts
	}
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.NavTimeout <= 0 {
		return ErrInvalidNavTimeout
	}
	if c.RequestDelay < 0 {
		return ErrInvalidRequestDelay
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.ClickRetryLimit < 0 || c.ScrollRounds < 0 {
		return ErrInvalidInteraction
	}
	if c.PaginationLookahead < 0 {
		return ErrInvalidLookahead
	}
	if c.MaxURLsPerSitemap <= 0 {
		return ErrInvalidSitemapLimit
	}
	return nil
}

// DefaultDBDir returns the XDG data directory for the crawl archive,
// e.g. ~/.local/share/sitespider on Linux.
func DefaultDBDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}
