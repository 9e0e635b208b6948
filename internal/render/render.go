package render

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Rendering fault sentinels. Workers treat both as a completed-but-empty
// visit; they only differ in what gets logged.
var (
	// ErrNavigationTimeout indicates the page did not finish loading
	// within the navigation timeout.
	ErrNavigationTimeout = errors.New("navigation timeout")

	// ErrNavigation indicates the navigation failed outright
	// (DNS failure, connection refused, renderer crash).
	ErrNavigation = errors.New("navigation failed")
)

// NavInfo carries the observable outcome of a successful navigation.
type NavInfo struct {
	// StatusCode is the HTTP status of the main document response,
	// zero when it could not be observed.
	StatusCode int

	// LastModified is the raw Last-Modified response header, if any.
	LastModified string
}

// Engine creates page contexts and owns the underlying rendering
// resource. Acquiring the resource (launching Chrome, building the HTTP
// client) happens in the engine constructor; failure there is the one
// fatal error of a crawl run.
type Engine interface {
	// NewPage creates a page context for one worker. Pages are not safe
	// for concurrent use; each worker must hold its own.
	NewPage(ctx context.Context) (Page, error)

	// Close releases the rendering resource. Pages created by the
	// engine must be closed first.
	Close() error
}

// Page is a scriptable page context. A worker drives it through
// Navigate, the optional Scroll/Click interaction phase, and the
// Extract* calls, then reuses it for the next URL.
type Page interface {
	// Navigate loads the URL and reports the response outcome.
	// Returns ErrNavigationTimeout or ErrNavigation (wrapped) on failure.
	Navigate(ctx context.Context, url string, timeout time.Duration) (*NavInfo, error)

	// ScrollToBottom scrolls to the page bottom repeatedly, up to
	// maxRounds times, stopping early once the page height settles.
	// Triggers lazy-loading on pages that append content on scroll.
	ScrollToBottom(ctx context.Context, maxRounds int) error

	// ClickMatching clicks elements matching the selectors, retrying
	// each selector up to retryLimit times while matches remain
	// visible. Used to exhaust "view more" style pagination widgets.
	ClickMatching(ctx context.Context, selectors []string, retryLimit int) error

	// CanonicalHref returns the resolved href of <link rel=canonical>,
	// or "" when the page declares none.
	CanonicalHref(ctx context.Context) (string, error)

	// ExtractAnchors returns the href of every anchor element,
	// resolved to absolute form.
	ExtractAnchors(ctx context.Context) ([]string, error)

	// ExtractAttributeValues returns the values of the named attributes
	// across all elements that carry them, in document order.
	ExtractAttributeValues(ctx context.Context, attrNames []string) ([]string, error)

	// ExtractScriptTexts returns the text content of inline <script>
	// elements.
	ExtractScriptTexts(ctx context.Context) ([]string, error)

	// Close releases the page context.
	Close() error
}

// navigationError wraps err so it matches ErrNavigation via errors.Is
// while preserving the underlying cause in the message.
func navigationError(err error) error {
	return fmt.Errorf("%w: %w", ErrNavigation, err)
}
