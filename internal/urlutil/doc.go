// Package urlutil provides URL canonicalization and crawl-scope checks.
//
// Every URL that enters the frontier passes through Normalize first, so the
// canonical string form produced here is the identity used for deduplication
// across the whole crawl. The rules are deliberately conservative: fragments
// and tracking parameters never change page content, so they are removed,
// while trailing slashes and path case are preserved because many sites
// serve different content for them and existing sitemaps depend on the
// exact form.
package urlutil
