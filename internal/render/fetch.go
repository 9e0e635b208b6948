package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultMaxBodySize caps how much of a response body the fetch
// renderer reads. 10MB covers any realistic HTML document while
// bounding memory per worker.
const DefaultMaxBodySize = 10 * 1024 * 1024

// FetchEngine renders pages with a plain HTTP GET and an HTML parse.
// No JavaScript runs, so script-generated links are limited to what the
// discovery heuristics can scrape out of the static markup — but it
// needs no browser binary, which makes it the right engine for CI and
// for mostly server-rendered sites.
type FetchEngine struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
}

// FetchOption configures a FetchEngine.
type FetchOption func(*FetchEngine)

// WithFetchClient sets a custom HTTP client, used by tests to point the
// engine at an httptest server.
func WithFetchClient(client *http.Client) FetchOption {
	return func(e *FetchEngine) {
		e.client = client
	}
}

// WithFetchMaxBodySize caps the response body size read per page.
func WithFetchMaxBodySize(size int64) FetchOption {
	return func(e *FetchEngine) {
		if size > 0 {
			e.maxBodySize = size
		}
	}
}

// NewFetchEngine creates a FetchEngine. It cannot fail: the HTTP client
// needs no external resource, unlike the Chrome engine.
func NewFetchEngine(userAgent string, opts ...FetchOption) *FetchEngine {
	e := &FetchEngine{
		client:      &http.Client{},
		userAgent:   userAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewPage returns a page context backed by the shared HTTP client.
func (e *FetchEngine) NewPage(_ context.Context) (Page, error) {
	return &fetchPage{engine: e}, nil
}

// Close is a no-op; the HTTP client holds no resources worth releasing.
func (e *FetchEngine) Close() error { return nil }

// fetchPage holds the parsed document of the last navigated URL.
type fetchPage struct {
	engine *FetchEngine

	doc  *goquery.Document
	base *url.URL
}

// Navigate fetches the URL and parses the response body as HTML.
func (p *fetchPage) Navigate(ctx context.Context, pageURL string, timeout time.Duration) (*NavInfo, error) {
	p.doc = nil
	p.base = nil

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, navigationError(err)
	}
	req.Header.Set("User-Agent", p.engine.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := p.engine.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrNavigationTimeout, pageURL)
		}
		return nil, navigationError(err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best-effort close on read path

	body := io.LimitReader(resp.Body, p.engine.maxBodySize)
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, navigationError(err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, navigationError(err)
	}

	p.doc = doc
	p.base = base
	return &NavInfo{
		StatusCode:   resp.StatusCode,
		LastModified: resp.Header.Get("Last-Modified"),
	}, nil
}

// ScrollToBottom is a no-op: there is no viewport without a browser.
func (p *fetchPage) ScrollToBottom(_ context.Context, _ int) error { return nil }

// ClickMatching is a no-op: static HTML has nothing to click.
func (p *fetchPage) ClickMatching(_ context.Context, _ []string, _ int) error { return nil }

// CanonicalHref returns the canonical link of the current document.
func (p *fetchPage) CanonicalHref(_ context.Context) (string, error) {
	if p.doc == nil {
		return "", nil
	}
	href, ok := p.doc.Find(`link[rel="canonical"]`).Attr("href")
	if !ok {
		return "", nil
	}
	return p.resolve(href), nil
}

// ExtractAnchors returns all anchor hrefs resolved against the page URL.
func (p *fetchPage) ExtractAnchors(_ context.Context) ([]string, error) {
	if p.doc == nil {
		return nil, nil
	}
	var hrefs []string
	p.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		if resolved := p.resolve(href); resolved != "" {
			hrefs = append(hrefs, resolved)
		}
	})
	return hrefs, nil
}

// ExtractAttributeValues returns the values of the named attributes
// across the document, unresolved: relative values are the discovery
// layer's job to resolve.
func (p *fetchPage) ExtractAttributeValues(_ context.Context, attrNames []string) ([]string, error) {
	if p.doc == nil || len(attrNames) == 0 {
		return nil, nil
	}
	parts := make([]string, 0, len(attrNames))
	for _, name := range attrNames {
		parts = append(parts, "["+name+"]")
	}

	var values []string
	p.doc.Find(strings.Join(parts, ",")).Each(func(_ int, s *goquery.Selection) {
		for _, name := range attrNames {
			if val, ok := s.Attr(name); ok && val != "" {
				values = append(values, val)
			}
		}
	})
	return values, nil
}

// ExtractScriptTexts returns the text of inline script elements.
func (p *fetchPage) ExtractScriptTexts(_ context.Context) ([]string, error) {
	if p.doc == nil {
		return nil, nil
	}
	var texts []string
	p.doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		texts = append(texts, s.Text())
	})
	return texts, nil
}

// Close is a no-op; the page holds only parsed state.
func (p *fetchPage) Close() error { return nil }

// resolve resolves href against the current page URL, dropping
// javascript:, mailto:, and similar non-navigable schemes.
func (p *fetchPage) resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return p.base.ResolveReference(u).String()
}
