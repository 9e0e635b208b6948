package model

// Snapshot holds everything the renderer extracted from one page after
// navigation, scrolling, and widget clicking finished. It is the sole
// input to the link-discovery heuristics.
//
// Design decision: We capture raw strings rather than parsed URLs because:
//  1. The renderer should not need to know normalization rules
//  2. Discovery heuristics decide per-rule how to resolve/filter values
//  3. Keeping the boundary string-based makes fake renderers trivial in tests
type Snapshot struct {
	// PageURL is the URL that was navigated to, used as the base for
	// resolving relative candidates.
	PageURL string

	// StatusCode is the HTTP status of the navigation response, zero if
	// it could not be observed.
	StatusCode int

	// LastModified is the raw Last-Modified response header, if any.
	LastModified string

	// CanonicalURL is the href of <link rel=canonical>, empty if absent.
	CanonicalURL string

	// AnchorHrefs are the href values of every <a href> element,
	// already resolved to absolute form by the renderer.
	AnchorHrefs []string

	// DataAttrValues are the values of data-url, data-href, data-link,
	// and data-target-url attributes, possibly relative.
	DataAttrValues []string

	// OnclickScripts are the raw onclick attribute bodies.
	OnclickScripts []string

	// InlineScripts are the text contents of <script> elements.
	InlineScripts []string
}
