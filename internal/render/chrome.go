package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// scrollPause is the settle time between scroll rounds, long enough for
// typical lazy-load handlers to fire and grow the page.
const scrollPause = 700 * time.Millisecond

// clickPause is the settle time after each widget click.
const clickPause = 800 * time.Millisecond

// ChromeEngine drives a headless Chrome instance over the DevTools
// protocol. One browser process serves all pages; each worker's Page is
// a separate tab within it.
type ChromeEngine struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	browserCtx  context.Context
	browserStop context.CancelFunc
}

// NewChromeEngine launches headless Chrome. Failure to start the browser
// is the fatal renderer-acquisition error: the caller must abort the run.
func NewChromeEngine(ctx context.Context, userAgent string) (*ChromeEngine, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(
			chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(userAgent),
		)...,
	)

	browserCtx, browserStop := chromedp.NewContext(allocCtx)

	// Run a no-op task to force the browser process to start now, so a
	// missing or broken Chrome binary surfaces here instead of inside
	// the first worker.
	if err := chromedp.Run(browserCtx); err != nil {
		browserStop()
		allocCancel()
		return nil, fmt.Errorf("failed to launch headless chrome: %w", err)
	}

	return &ChromeEngine{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		browserCtx:  browserCtx,
		browserStop: browserStop,
	}, nil
}

// NewPage opens a new tab and wires up network-response capture for it.
func (e *ChromeEngine) NewPage(_ context.Context) (Page, error) {
	tabCtx, tabCancel := chromedp.NewContext(e.browserCtx)

	p := &chromePage{ctx: tabCtx, cancel: tabCancel}

	if err := chromedp.Run(tabCtx, network.Enable()); err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to enable network capture: %w", err)
	}

	// Capture the main-document response so Navigate can report the
	// status code and Last-Modified header.
	chromedp.ListenTarget(tabCtx, func(ev any) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument {
			return
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		p.lastStatus = int(resp.Response.Status)
		p.lastModified = headerValue(resp.Response.Headers, "last-modified")
	})

	return p, nil
}

// Close shuts down the browser process.
func (e *ChromeEngine) Close() error {
	e.browserStop()
	e.allocCancel()
	return nil
}

// chromePage is one Chrome tab. Not safe for concurrent use; each
// worker owns exactly one.
type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	lastStatus   int
	lastModified string
}

// Navigate loads the URL and waits for the document to become ready.
func (p *chromePage) Navigate(ctx context.Context, url string, timeout time.Duration) (*NavInfo, error) {
	p.mu.Lock()
	p.lastStatus = 0
	p.lastModified = ""
	p.mu.Unlock()

	navCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrNavigationTimeout, url)
		}
		return nil, navigationError(err)
	}
	// Honor the caller's cancellation between navigation and extraction.
	if err := ctx.Err(); err != nil {
		return nil, navigationError(err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return &NavInfo{StatusCode: p.lastStatus, LastModified: p.lastModified}, nil
}

// ScrollToBottom scrolls until the page height stops growing or
// maxRounds is reached.
func (p *chromePage) ScrollToBottom(_ context.Context, maxRounds int) error {
	var previous float64 = -1
	for i := 0; i < maxRounds; i++ {
		var height float64
		err := chromedp.Run(p.ctx,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(scrollPause),
			chromedp.Evaluate(`document.body.scrollHeight`, &height),
		)
		if err != nil {
			return err
		}
		if height == previous {
			break
		}
		previous = height
	}
	return nil
}

// clickScript clicks the first visible element matching the selector and
// reports whether anything was clicked. Selectors of the form "text=Foo"
// match buttons and links by their trimmed text content; everything else
// is treated as a CSS selector.
const clickScript = `(function(selector) {
	let el = null;
	if (selector.startsWith('text=')) {
		const want = selector.slice(5).toLowerCase();
		el = Array.from(document.querySelectorAll('a, button'))
			.find(n => n.innerText && n.innerText.trim().toLowerCase() === want) || null;
	} else {
		try { el = document.querySelector(selector); } catch (e) { return false; }
	}
	if (!el) return false;
	const rect = el.getBoundingClientRect();
	if (rect.width === 0 && rect.height === 0) return false;
	el.click();
	return true;
})(%q)`

// ClickMatching exhausts "view more" style widgets: for each selector it
// keeps clicking while a visible match remains, up to retryLimit clicks.
func (p *chromePage) ClickMatching(ctx context.Context, selectors []string, retryLimit int) error {
	for _, selector := range selectors {
		for attempt := 0; attempt < retryLimit; attempt++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			var clicked bool
			err := chromedp.Run(p.ctx,
				chromedp.Evaluate(fmt.Sprintf(clickScript, selector), &clicked),
			)
			if err != nil || !clicked {
				break
			}
			if err := chromedp.Run(p.ctx, chromedp.Sleep(clickPause)); err != nil {
				return err
			}
		}
	}
	return nil
}

// CanonicalHref returns the page's declared canonical URL, if any.
func (p *chromePage) CanonicalHref(_ context.Context) (string, error) {
	var href string
	err := chromedp.Run(p.ctx, chromedp.Evaluate(
		`(document.querySelector('link[rel=canonical]') || {}).href || ''`, &href))
	return href, err
}

// ExtractAnchors returns every anchor href, absolute courtesy of the
// browser's href property.
func (p *chromePage) ExtractAnchors(_ context.Context) ([]string, error) {
	var hrefs []string
	err := chromedp.Run(p.ctx, chromedp.Evaluate(
		`Array.from(document.querySelectorAll('a[href]')).map(a => a.href)`, &hrefs))
	return hrefs, err
}

// ExtractAttributeValues returns the values of the named attributes in
// document order.
func (p *chromePage) ExtractAttributeValues(_ context.Context, attrNames []string) ([]string, error) {
	if len(attrNames) == 0 {
		return nil, nil
	}
	parts := make([]string, 0, len(attrNames))
	for _, name := range attrNames {
		parts = append(parts, "["+name+"]")
	}
	script := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).flatMap(n => %s.map(a => n.getAttribute(a)).filter(v => v !== null))`,
		strings.Join(parts, ","), jsStringArray(attrNames))

	var values []string
	err := chromedp.Run(p.ctx, chromedp.Evaluate(script, &values))
	return values, err
}

// ExtractScriptTexts returns the body text of inline script elements.
func (p *chromePage) ExtractScriptTexts(_ context.Context) ([]string, error) {
	var texts []string
	err := chromedp.Run(p.ctx, chromedp.Evaluate(
		`Array.from(document.querySelectorAll('script')).map(s => s.textContent || '')`, &texts))
	return texts, err
}

// Close closes the tab.
func (p *chromePage) Close() error {
	p.cancel()
	return nil
}

// jsStringArray renders a Go string slice as a JavaScript array literal.
func jsStringArray(items []string) string {
	quoted := make([]string, 0, len(items))
	for _, item := range items {
		quoted = append(quoted, fmt.Sprintf("%q", item))
	}
	return "[" + strings.Join(quoted, ",") + "]"
}

// headerValue reads a header from the CDP header map, which preserves
// the server's original casing.
func headerValue(headers network.Headers, name string) string {
	for key, value := range headers {
		if strings.EqualFold(key, name) {
			if s, ok := value.(string); ok {
				return s
			}
		}
	}
	return ""
}
