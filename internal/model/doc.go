// Package model defines the core data structures used throughout sitespider.
//
// This package contains the following main types:
//   - Snapshot: Everything extracted from one rendered page
//   - VisitRecord: Per-URL metadata captured on the first completed visit
//   - SitemapEntry: One row of the final, ordered crawl output
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (render, discover, crawler, report) need to
// use these types, so centralizing them prevents import cycles.
package model
