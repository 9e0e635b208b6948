package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".sitespider"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML shape of a sitespider configuration file. Every field
// is optional; zero values leave the corresponding Config field alone so
// the file only has to state what differs from the defaults and flags.
type File struct {
	// AllowedHosts lists the hosts in crawl scope.
	AllowedHosts []string `yaml:"allowed_hosts"`

	// Seeds lists the starting URLs.
	Seeds []string `yaml:"seeds"`

	// Concurrency is the worker count.
	Concurrency int `yaml:"concurrency"`

	// NavTimeout bounds one navigation, e.g. "45s".
	NavTimeout Duration `yaml:"nav_timeout"`

	// RequestDelay is the per-worker pause between navigations, e.g. "250ms".
	RequestDelay Duration `yaml:"request_delay"`

	// MaxPages caps the number of visited pages.
	MaxPages int `yaml:"max_pages"`

	// ClickRetryLimit caps clicks per "view more" selector.
	ClickRetryLimit int `yaml:"click_retry_limit"`

	// ScrollRounds caps scroll-to-bottom rounds per page.
	ScrollRounds int `yaml:"scroll_rounds"`

	// ViewMoreSelectors replaces the built-in widget selector list.
	ViewMoreSelectors []string `yaml:"view_more_selectors"`

	// PaginationLookahead is the pagination probe distance.
	PaginationLookahead int `yaml:"pagination_lookahead"`

	// UserAgent overrides the request User-Agent.
	UserAgent string `yaml:"user_agent"`

	// OutputDir is where sitemap files are written.
	OutputDir string `yaml:"output_dir"`

	// MaxURLsPerSitemap is the per-file URL ceiling.
	MaxURLsPerSitemap int `yaml:"max_urls_per_sitemap"`

	// GzipSitemaps writes .xml.gz files when true.
	GzipSitemaps bool `yaml:"gzip_sitemaps"`
}

// LoadConfigFile loads a configuration file from path.
// If the file does not exist, it returns ErrConfigNotFound. Callers
// should treat that as fatal only when the path was given explicitly.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Apply copies the file's non-zero settings onto cfg.
func (f *File) Apply(cfg *Config) {
	if len(f.AllowedHosts) > 0 {
		cfg.AllowedHosts = f.AllowedHosts
	}
	if len(f.Seeds) > 0 {
		cfg.Seeds = f.Seeds
	}
	if f.Concurrency > 0 {
		cfg.Concurrency = f.Concurrency
	}
	if f.NavTimeout.Duration > 0 {
		cfg.NavTimeout = f.NavTimeout.Duration
	}
	if f.RequestDelay.Duration > 0 {
		cfg.RequestDelay = f.RequestDelay.Duration
	}
	if f.MaxPages > 0 {
		cfg.MaxPages = f.MaxPages
	}
	if f.ClickRetryLimit > 0 {
		cfg.ClickRetryLimit = f.ClickRetryLimit
	}
	if f.ScrollRounds > 0 {
		cfg.ScrollRounds = f.ScrollRounds
	}
	if len(f.ViewMoreSelectors) > 0 {
		cfg.ViewMoreSelectors = f.ViewMoreSelectors
	}
	if f.PaginationLookahead > 0 {
		cfg.PaginationLookahead = f.PaginationLookahead
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.OutputDir != "" {
		cfg.OutputDir = f.OutputDir
	}
	if f.MaxURLsPerSitemap > 0 {
		cfg.MaxURLsPerSitemap = f.MaxURLsPerSitemap
	}
	if f.GzipSitemaps {
		cfg.GzipSitemaps = true
	}
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .sitespider in the current directory
//  3. Look for .sitespider in the user's home directory
//
// Returns the path if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
