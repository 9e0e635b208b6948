package model

import "time"

// CrawledAtLayout is the timestamp format used for crawl metadata.
// ISO-8601 in UTC with a literal Z suffix, which is what sitemap
// consumers expect in <lastmod> values.
const CrawledAtLayout = "2006-01-02T15:04:05Z"

// VisitRecord holds the metadata captured when a URL's crawl attempt
// completed. A record is written exactly once per URL; re-visits never
// overwrite it.
type VisitRecord struct {
	// StatusCode is the HTTP status of the navigation response.
	// Zero means the status could not be captured (navigation fault,
	// renderer without response access).
	StatusCode int `json:"status_code,omitempty"`

	// LastModified is the raw Last-Modified response header value,
	// empty when the server did not send one.
	LastModified string `json:"last_modified,omitempty"`

	// CrawledAt is the UTC time the visit completed, formatted with
	// CrawledAtLayout.
	CrawledAt string `json:"crawled_at"`
}

// NewVisitRecord creates a VisitRecord stamped with the current UTC time.
func NewVisitRecord(statusCode int, lastModified string) VisitRecord {
	return VisitRecord{
		StatusCode:   statusCode,
		LastModified: lastModified,
		CrawledAt:    time.Now().UTC().Format(CrawledAtLayout),
	}
}

// SitemapEntry is one row of the ordered crawl output consumed by the
// sitemap writer and the persistence layer.
type SitemapEntry struct {
	// URL is the normalized URL of the visited page.
	URL string `json:"url"`

	// LastModified is the Last-Modified header if the server sent one,
	// otherwise empty. The sitemap writer falls back to CrawledAt.
	LastModified string `json:"last_modified,omitempty"`

	// CrawledAt is the visit timestamp in CrawledAtLayout format.
	CrawledAt string `json:"crawled_at"`
}

// LastMod returns the value to place in a sitemap <lastmod> element:
// the server-provided Last-Modified when present, the crawl timestamp
// otherwise.
func (e SitemapEntry) LastMod() string {
	if e.LastModified != "" {
		return e.LastModified
	}
	return e.CrawledAt
}
