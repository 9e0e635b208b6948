package report

import (
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/sitespider/internal/model"
)

// sitemapXMLNS is the sitemaps.org protocol namespace.
const sitemapXMLNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// urlEntry is one <url> element of a sitemap.
type urlEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// urlSet is the root <urlset> element of a sitemap.
type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	XMLNS   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

// indexEntry is one <sitemap> element of a sitemap index.
type indexEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// sitemapIndex is the root <sitemapindex> element.
type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	XMLNS    string       `xml:"xmlns,attr"`
	Sitemaps []indexEntry `xml:"sitemap"`
}

// SitemapWriter writes crawl results as sitemaps.org 0.9 XML files.
//
// When the entry count fits within the per-file limit, a single
// sitemap.xml is written. Larger runs are split into numbered chunks
// plus a sitemap_index.xml referencing them, which is the format
// search engines expect for large sites.
type SitemapWriter struct {
	// dir is the output directory, created on demand.
	dir string

	// limit is the maximum number of URLs per sitemap file.
	limit int

	// gzip compresses each sitemap file (not the index) when true.
	gzip bool

	// baseURL prefixes chunk filenames in the index <loc> elements,
	// e.g. "https://example.com/sitemaps". Empty means bare filenames,
	// which keeps the index usable after the files are uploaded.
	baseURL string

	// now is injected by tests.
	now func() time.Time
}

// SitemapOption configures a SitemapWriter.
type SitemapOption func(*SitemapWriter)

// WithSitemapLimit sets the maximum number of URLs per sitemap file.
func WithSitemapLimit(limit int) SitemapOption {
	return func(w *SitemapWriter) {
		if limit > 0 {
			w.limit = limit
		}
	}
}

// WithGzip enables gzip compression of the sitemap files.
func WithGzip(enabled bool) SitemapOption {
	return func(w *SitemapWriter) {
		w.gzip = enabled
	}
}

// WithBaseURL sets the URL prefix used for chunk references in the
// sitemap index.
func WithBaseURL(baseURL string) SitemapOption {
	return func(w *SitemapWriter) {
		w.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewSitemapWriter creates a SitemapWriter targeting the given directory.
func NewSitemapWriter(dir string, opts ...SitemapOption) *SitemapWriter {
	w := &SitemapWriter{
		dir:   dir,
		limit: 50000,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the entries as one or more sitemap files and returns the
// paths of the files written. An empty entry list writes nothing.
func (w *SitemapWriter) Write(entries []model.SitemapEntry) ([]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(w.dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if len(entries) <= w.limit {
		path, err := w.writeChunk(w.fileName("sitemap"), entries)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	// Chunked output with index
	var written []string
	var index sitemapIndex
	index.XMLNS = sitemapXMLNS
	now := w.now().UTC().Format(model.CrawledAtLayout)

	for i := 0; i*w.limit < len(entries); i++ {
		start := i * w.limit
		end := start + w.limit
		if end > len(entries) {
			end = len(entries)
		}

		name := w.fileName(fmt.Sprintf("sitemap_%03d", i+1))
		path, err := w.writeChunk(name, entries[start:end])
		if err != nil {
			return written, err
		}
		written = append(written, path)
		index.Sitemaps = append(index.Sitemaps, indexEntry{
			Loc:     w.indexLoc(name),
			LastMod: now,
		})
	}

	indexPath := filepath.Join(w.dir, "sitemap_index.xml")
	if err := writeXMLFile(indexPath, false, index); err != nil {
		return written, err
	}
	return append(written, indexPath), nil
}

// fileName returns the chunk filename for the given stem, honoring the
// gzip setting.
func (w *SitemapWriter) fileName(stem string) string {
	if w.gzip {
		return stem + ".xml.gz"
	}
	return stem + ".xml"
}

// indexLoc returns the <loc> value for a chunk filename.
func (w *SitemapWriter) indexLoc(name string) string {
	if w.baseURL == "" {
		return name
	}
	return w.baseURL + "/" + name
}

// writeChunk writes a single urlset file and returns its path.
func (w *SitemapWriter) writeChunk(name string, entries []model.SitemapEntry) (string, error) {
	set := urlSet{XMLNS: sitemapXMLNS}
	for _, entry := range entries {
		set.URLs = append(set.URLs, urlEntry{
			Loc:     entry.URL,
			LastMod: entry.LastMod(),
		})
	}

	path := filepath.Join(w.dir, name)
	if err := writeXMLFile(path, w.gzip, set); err != nil {
		return "", err
	}
	return path, nil
}

// writeXMLFile marshals v with an XML declaration into path, optionally
// gzip-compressed.
func writeXMLFile(path string, gzipped bool, v any) (err error) {
	f, err := os.Create(path) //nolint:gosec // path is built from the configured output dir
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()

	var out io.Writer = f
	var gz *gzip.Writer
	if gzipped {
		gz = gzip.NewWriter(f)
		out = gz
	}

	if _, err := io.WriteString(out, xml.Header); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	enc := xml.NewEncoder(out)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if _, err := io.WriteString(out, "\n"); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("failed to flush %s: %w", path, err)
		}
	}
	return nil
}
