// Package report generates the output artifacts of a crawl run.
//
// This package contains writers for different output formats:
//   - SitemapWriter: sitemaps.org 0.9 XML sitemaps, chunked with an index
//   - SummaryWriter: human-readable Markdown run summary
//   - XLSXWriter: spreadsheet URL inventory for non-technical review
//
// Design decision: We separate output generation from the crawl data
// structures (which are in the model package) to follow the single
// responsibility principle. This allows adding new output formats
// without modifying the core data structures.
//
// All writers consume the same ordered []model.SitemapEntry slice that
// the frontier produces, so any writer can also run against entries
// loaded back from the database.
package report
