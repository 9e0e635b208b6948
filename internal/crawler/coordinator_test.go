package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/sitespider/internal/config"
	"github.com/nao1215/sitespider/internal/model"
	"github.com/nao1215/sitespider/internal/render"
)

// fakeSite is a scripted site served by fakeEngine. Pages are keyed by
// normalized URL; URLs without an entry render as empty pages.
type fakeSite struct {
	mu      sync.Mutex
	pages   map[string]model.Snapshot
	navErr  map[string]error
	visits  map[string]int
	navSlow time.Duration
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		pages:  make(map[string]model.Snapshot),
		navErr: make(map[string]error),
		visits: make(map[string]int),
	}
}

func (s *fakeSite) visitCount(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visits[url]
}

// fakeEngine implements render.Engine over a fakeSite.
type fakeEngine struct {
	site       *fakeSite
	newPageErr error
}

func (e *fakeEngine) NewPage(_ context.Context) (render.Page, error) {
	if e.newPageErr != nil {
		return nil, e.newPageErr
	}
	return &fakePage{site: e.site}, nil
}

func (e *fakeEngine) Close() error { return nil }

// fakePage implements render.Page with scripted content.
type fakePage struct {
	site    *fakeSite
	current model.Snapshot
	loaded  bool
}

func (p *fakePage) Navigate(ctx context.Context, url string, _ time.Duration) (*render.NavInfo, error) {
	p.site.mu.Lock()
	p.site.visits[url]++
	err := p.site.navErr[url]
	snap, ok := p.site.pages[url]
	slow := p.site.navSlow
	p.site.mu.Unlock()

	if slow > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(slow):
		}
	}
	if err != nil {
		p.loaded = false
		return nil, err
	}

	p.current = snap
	p.loaded = true
	info := &render.NavInfo{StatusCode: 200, LastModified: snap.LastModified}
	if !ok {
		info.StatusCode = 404
	}
	return info, nil
}

func (p *fakePage) ScrollToBottom(_ context.Context, _ int) error { return nil }

func (p *fakePage) ClickMatching(_ context.Context, _ []string, _ int) error { return nil }

func (p *fakePage) CanonicalHref(_ context.Context) (string, error) {
	return p.current.CanonicalURL, nil
}

func (p *fakePage) ExtractAnchors(_ context.Context) ([]string, error) {
	return p.current.AnchorHrefs, nil
}

func (p *fakePage) ExtractAttributeValues(_ context.Context, attrNames []string) ([]string, error) {
	if len(attrNames) == 1 && attrNames[0] == "onclick" {
		return p.current.OnclickScripts, nil
	}
	return p.current.DataAttrValues, nil
}

func (p *fakePage) ExtractScriptTexts(_ context.Context) ([]string, error) {
	return p.current.InlineScripts, nil
}

func (p *fakePage) Close() error { return nil }

// testConfig returns a fast configuration for coordinator tests.
func testConfig(workers int) *config.Config {
	cfg := config.NewConfig()
	cfg.AllowedHosts = []string{"h"}
	cfg.Seeds = []string{"https://h/"}
	cfg.Concurrency = workers
	cfg.RequestDelay = 0
	cfg.NavTimeout = time.Second
	return cfg
}

func newTestCoordinator(cfg *config.Config, site *fakeSite) *Coordinator {
	return New(cfg, &fakeEngine{site: site}, WithIdleWait(10*time.Millisecond))
}

// TestCoordinatorCrawl tests full crawl scenarios over a scripted site.
func TestCoordinatorCrawl(t *testing.T) {
	t.Parallel()

	t.Run("follows in-scope links and skips out-of-scope", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite()
		site.pages["https://h/"] = model.Snapshot{
			AnchorHrefs: []string{"https://h/jobs", "https://other/x"},
		}
		site.pages["https://h/jobs"] = model.Snapshot{}

		coord := newTestCoordinator(testConfig(2), site)
		entries, err := coord.Run(context.Background())
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		want := []string{"https://h/", "https://h/jobs"}
		if len(entries) != len(want) {
			t.Fatalf("entries = %v, want URLs %v", entries, want)
		}
		got := map[string]bool{}
		for _, e := range entries {
			got[e.URL] = true
		}
		for _, u := range want {
			if !got[u] {
				t.Errorf("missing %q in entries", u)
			}
		}
		if got["https://other/x"] {
			t.Error("out-of-scope URL must never be visited")
		}
		if n := site.visitCount("https://other/x"); n != 0 {
			t.Errorf("out-of-scope URL navigated %d times", n)
		}
		if entries[0].URL != "https://h/" {
			t.Errorf("entries[0] = %q, want the seed first", entries[0].URL)
		}
	})

	t.Run("terminates on link-free site with cap above one", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite()
		site.pages["https://h/"] = model.Snapshot{}

		cfg := testConfig(4)
		cfg.MaxPages = 100
		coord := newTestCoordinator(cfg, site)

		done := make(chan struct{})
		var entries []model.SitemapEntry
		var err error
		go func() {
			entries, err = coord.Run(context.Background())
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("crawl did not terminate")
		}
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("entries = %v, want exactly the seed", entries)
		}
	})

	t.Run("page cap stops the crawl", func(t *testing.T) {
		t.Parallel()

		// A chain long enough that only the cap can stop it.
		site := newFakeSite()
		site.pages["https://h/"] = model.Snapshot{AnchorHrefs: []string{"https://h/p1"}}
		for i := 1; i <= 10; i++ {
			url := fmt.Sprintf("https://h/p%d", i)
			next := fmt.Sprintf("https://h/p%d", i+1)
			site.pages[url] = model.Snapshot{AnchorHrefs: []string{next}}
		}

		cfg := testConfig(1)
		cfg.MaxPages = 3
		coord := newTestCoordinator(cfg, site)

		entries, err := coord.Run(context.Background())
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if len(entries) != 3 {
			t.Errorf("entries length = %d, want the cap of 3", len(entries))
		}
	})

	t.Run("navigation fault counts as completed empty visit", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite()
		site.pages["https://h/"] = model.Snapshot{
			AnchorHrefs: []string{"https://h/broken", "https://h/ok"},
		}
		site.navErr["https://h/broken"] = render.ErrNavigation
		site.pages["https://h/ok"] = model.Snapshot{}

		coord := newTestCoordinator(testConfig(2), site)
		entries, err := coord.Run(context.Background())
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		if len(entries) != 3 {
			t.Fatalf("entries = %v, want 3 visits including the broken page", entries)
		}
		for _, e := range entries {
			if e.URL == "https://h/broken" && e.CrawledAt == "" {
				t.Error("broken page must still carry a crawl timestamp")
			}
		}
		if n := site.visitCount("https://h/broken"); n != 1 {
			t.Errorf("broken page navigated %d times, want 1 (no retry)", n)
		}
	})

	t.Run("redundant discoveries visit each URL once", func(t *testing.T) {
		t.Parallel()

		// Every page links to every other page.
		site := newFakeSite()
		urls := []string{"https://h/", "https://h/a", "https://h/b", "https://h/c"}
		for _, u := range urls {
			site.pages[u] = model.Snapshot{AnchorHrefs: urls}
		}

		coord := newTestCoordinator(testConfig(4), site)
		entries, err := coord.Run(context.Background())
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if len(entries) != len(urls) {
			t.Errorf("entries length = %d, want %d", len(entries), len(urls))
		}
	})

	t.Run("renderer acquisition failure aborts the run", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{site: newFakeSite(), newPageErr: errors.New("chrome not found")}
		coord := New(testConfig(2), engine, WithIdleWait(10*time.Millisecond))
		if _, err := coord.Run(context.Background()); err == nil {
			t.Fatal("Run must fail when no renderer page can be acquired")
		}
	})

	t.Run("cancellation stops workers promptly", func(t *testing.T) {
		t.Parallel()

		// An endless self-feeding site with slow navigations.
		site := newFakeSite()
		site.navSlow = 100 * time.Millisecond
		site.pages["https://h/"] = model.Snapshot{
			AnchorHrefs: []string{"https://h/x?page=1"},
		}

		ctx, cancel := context.WithCancel(context.Background())
		coord := newTestCoordinator(testConfig(2), site)

		done := make(chan error, 1)
		go func() {
			_, err := coord.Run(ctx)
			done <- err
		}()

		time.Sleep(100 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Run error = %v, want context.Canceled", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("workers did not stop after cancellation")
		}
	})
}

// TestCoordinatorSeeds tests seed handling.
func TestCoordinatorSeeds(t *testing.T) {
	t.Parallel()

	t.Run("seeds are normalized before enqueue", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite()
		site.pages["https://h/"] = model.Snapshot{}

		cfg := testConfig(1)
		cfg.Seeds = []string{"https://h/?utm_source=mail#top", "https://h/"}
		coord := newTestCoordinator(cfg, site)

		entries, err := coord.Run(context.Background())
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if len(entries) != 1 || entries[0].URL != "https://h/" {
			t.Errorf("entries = %v, want the two seeds collapsed into one", entries)
		}
	})

	t.Run("all-invalid seeds fail the run", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(1)
		cfg.Seeds = []string{"ftp://h/", "not a url at all \x7f"}
		coord := newTestCoordinator(cfg, newFakeSite())
		if _, err := coord.Run(context.Background()); err == nil {
			t.Fatal("Run must fail when no seed survives normalization")
		}
	})
}
