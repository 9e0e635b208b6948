package config

import "errors"

// Configuration validation errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoAllowedHosts is returned when the crawl scope is empty.
	// Without allowed hosts every discovered link would be rejected.
	ErrNoAllowedHosts = errors.New("no allowed hosts: provide at least one host to crawl")

	// ErrNoSeeds is returned when no seed URL is configured.
	ErrNoSeeds = errors.New("no seed URLs: provide at least one starting URL")

	// ErrInvalidConcurrency is returned when the worker count is not
	// positive. Zero workers would mean the crawl never starts.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidNavTimeout is returned when the navigation timeout is
	// not positive. A zero timeout would fail every navigation instantly.
	ErrInvalidNavTimeout = errors.New("invalid navigation timeout: must be positive")

	// ErrInvalidRequestDelay is returned when the inter-request delay is
	// negative. Use 0 for no delay between navigations.
	ErrInvalidRequestDelay = errors.New("invalid request delay: must be non-negative")

	// ErrInvalidMaxPages is returned when the page cap is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidInteraction is returned when the click-retry limit or
	// scroll-round limit is negative. Use 0 to disable the phase.
	ErrInvalidInteraction = errors.New("invalid interaction limits: click retries and scroll rounds must be non-negative")

	// ErrInvalidLookahead is returned when the pagination look-ahead is
	// negative. Use 0 for the default look-ahead.
	ErrInvalidLookahead = errors.New("invalid pagination lookahead: must be non-negative")

	// ErrInvalidSitemapLimit is returned when the per-file URL ceiling
	// is not positive.
	ErrInvalidSitemapLimit = errors.New("invalid sitemap URL limit: must be positive")
)
