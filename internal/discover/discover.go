package discover

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/sitespider/internal/model"
	"github.com/nao1215/sitespider/internal/urlutil"
)

// DefaultPaginationLookahead is how many successor pages are synthesized
// for each candidate carrying a numeric page parameter. Five pages ahead
// covers typical listing widgets that only link the next page or two.
const DefaultPaginationLookahead = 5

// absoluteURLRegex matches absolute http(s) URLs inside script text.
// It stops at whitespace and quotes, which delimit URLs in practice.
var absoluteURLRegex = regexp.MustCompile(`https?://[^\s'"]+`)

// rootRelativeRegex matches quoted root-relative paths inside onclick
// handlers, e.g. location.href='/jobs/123'.
var rootRelativeRegex = regexp.MustCompile(`['"](/[^'"]+)['"]`)

// endpointRegex matches quoted root-relative paths under the endpoint
// prefixes that sites commonly expose from inline script blobs.
var endpointRegex = regexp.MustCompile(`['"](/(?:api|ajax|data|jobs|search)[^'"]+)['"]`)

// Discoverer extracts crawl candidates from page snapshots.
// It is stateless apart from its configuration and safe for concurrent use.
type Discoverer struct {
	scope     urlutil.HostSet
	lookahead int
}

// New creates a Discoverer restricted to the given host set.
// A non-positive lookahead falls back to DefaultPaginationLookahead.
func New(scope urlutil.HostSet, lookahead int) *Discoverer {
	if lookahead <= 0 {
		lookahead = DefaultPaginationLookahead
	}
	return &Discoverer{scope: scope, lookahead: lookahead}
}

// Result holds the union of all heuristics' candidates plus the faults
// of heuristics that could not run. Candidates are normalized, deduplicated,
// and ordered deterministically (insertion order of first discovery).
type Result struct {
	// Candidates are normalized URLs ready for Frontier.EnqueueIfNew.
	Candidates []string

	// Faults records per-heuristic failures. A fault means one rule's
	// contribution is missing, never that discovery failed as a whole.
	Faults []error
}

// Discover runs every heuristic against the snapshot and returns the
// union of their candidates. It performs no network access of its own.
func (d *Discoverer) Discover(snap *model.Snapshot) Result {
	var res Result
	seen := make(map[string]bool)

	add := func(normalized string) {
		if normalized == "" || seen[normalized] {
			return
		}
		seen[normalized] = true
		res.Candidates = append(res.Candidates, normalized)
	}
	addInScope := func(normalized string) {
		if d.scope.InScope(normalized) {
			add(normalized)
		}
	}

	base, err := url.Parse(snap.PageURL)
	if err != nil {
		// Without a base URL the relative heuristics cannot resolve
		// anything; only absolute-URL rules still apply.
		res.Faults = append(res.Faults, fmt.Errorf("base URL %q: %w", snap.PageURL, err))
		base = nil
	}

	// Rule 1: the canonical link is included even when it points out of
	// scope, so the sitemap can carry the page's self-declared identity.
	if snap.CanonicalURL != "" {
		add(urlutil.Normalize(snap.CanonicalURL))
	}

	// Rule 2: anchor hrefs, already absolute.
	for _, href := range snap.AnchorHrefs {
		addInScope(urlutil.Normalize(href))
	}

	// Rule 3: data-* attribute values, resolved when relative.
	for _, val := range snap.DataAttrValues {
		addInScope(urlutil.Normalize(resolve(base, val)))
	}

	// Rule 4: onclick handlers, scanned for absolute URLs and quoted
	// root-relative paths.
	for _, script := range snap.OnclickScripts {
		for _, m := range absoluteURLRegex.FindAllString(script, -1) {
			addInScope(urlutil.Normalize(m))
		}
		for _, m := range rootRelativeRegex.FindAllStringSubmatch(script, -1) {
			addInScope(urlutil.Normalize(resolve(base, m[1])))
		}
	}

	// Rule 5: endpoint-looking paths inside inline script bodies.
	for _, script := range snap.InlineScripts {
		for _, m := range endpointRegex.FindAllStringSubmatch(script, -1) {
			addInScope(urlutil.Normalize(resolve(base, m[1])))
		}
	}

	// Rule 6: pagination expansion over everything discovered so far.
	for _, expanded := range d.expandPagination(res.Candidates) {
		addInScope(urlutil.Normalize(expanded))
	}

	return res
}

// resolve resolves ref against base. Values that already carry a scheme
// pass through untouched; when base is nil, relative refs are dropped.
func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if base == nil {
		return ""
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(refURL).String()
}
