package discover

import (
	"strings"
	"testing"

	"github.com/nao1215/sitespider/internal/model"
	"github.com/nao1215/sitespider/internal/urlutil"
)

func newTestDiscoverer(lookahead int) *Discoverer {
	return New(urlutil.NewHostSet([]string{"h"}), lookahead)
}

// TestDiscoverHeuristics tests each extraction rule in isolation.
func TestDiscoverHeuristics(t *testing.T) {
	t.Parallel()

	t.Run("canonical link bypasses scope filter", func(t *testing.T) {
		t.Parallel()

		d := newTestDiscoverer(0)
		res := d.Discover(&model.Snapshot{
			PageURL:      "https://h/p",
			CanonicalURL: "https://other.example/canonical?utm_source=x",
		})

		want := "https://other.example/canonical"
		if len(res.Candidates) != 1 || res.Candidates[0] != want {
			t.Errorf("Candidates = %v, want [%s]", res.Candidates, want)
		}
	})

	t.Run("anchors filtered by scope", func(t *testing.T) {
		t.Parallel()

		d := newTestDiscoverer(0)
		res := d.Discover(&model.Snapshot{
			PageURL: "https://h/",
			AnchorHrefs: []string{
				"https://h/jobs",
				"https://other/x",
				"https://h/jobs#section",
				"mailto:someone@h",
			},
		})

		if len(res.Candidates) != 1 || res.Candidates[0] != "https://h/jobs" {
			t.Errorf("Candidates = %v, want [https://h/jobs]", res.Candidates)
		}
	})

	t.Run("data attributes resolve relative values", func(t *testing.T) {
		t.Parallel()

		d := newTestDiscoverer(0)
		res := d.Discover(&model.Snapshot{
			PageURL:        "https://h/listings/",
			DataAttrValues: []string{"/jobs/1", "detail/2", "https://h/jobs/3", "https://other/jobs/4"},
		})

		want := map[string]bool{
			"https://h/jobs/1":            true,
			"https://h/listings/detail/2": true,
			"https://h/jobs/3":            true,
		}
		if len(res.Candidates) != len(want) {
			t.Fatalf("Candidates = %v, want %d entries", res.Candidates, len(want))
		}
		for _, c := range res.Candidates {
			if !want[c] {
				t.Errorf("unexpected candidate %q", c)
			}
		}
	})

	t.Run("onclick yields absolute URLs and quoted paths", func(t *testing.T) {
		t.Parallel()

		d := newTestDiscoverer(0)
		res := d.Discover(&model.Snapshot{
			PageURL: "https://h/",
			OnclickScripts: []string{
				`window.open('https://h/popup?b=2&a=1')`,
				`location.href='/account/settings'`,
				`track('https://cdn.other/pixel.gif')`,
			},
		})

		want := map[string]bool{
			"https://h/popup?a=1&b=2":    true,
			"https://h/account/settings": true,
		}
		if len(res.Candidates) != len(want) {
			t.Fatalf("Candidates = %v, want %d entries", res.Candidates, len(want))
		}
		for _, c := range res.Candidates {
			if !want[c] {
				t.Errorf("unexpected candidate %q", c)
			}
		}
	})

	t.Run("inline scripts only match endpoint prefixes", func(t *testing.T) {
		t.Parallel()

		d := newTestDiscoverer(0)
		res := d.Discover(&model.Snapshot{
			PageURL: "https://h/",
			InlineScripts: []string{
				`fetch("/api/v1/listings"); load("/assets/app.js"); go("/jobs/456");`,
				`const q = "/search?term=engineer";`,
			},
		})

		want := map[string]bool{
			"https://h/api/v1/listings":      true,
			"https://h/jobs/456":             true,
			"https://h/search?term=engineer": true,
		}
		if len(res.Candidates) != len(want) {
			t.Fatalf("Candidates = %v, want %d entries", res.Candidates, len(want))
		}
		for _, c := range res.Candidates {
			if !want[c] {
				t.Errorf("unexpected candidate %q", c)
			}
		}
	})

	t.Run("bad base URL faults but absolute rules still run", func(t *testing.T) {
		t.Parallel()

		d := newTestDiscoverer(0)
		res := d.Discover(&model.Snapshot{
			PageURL:        "https://h/\x7f",
			AnchorHrefs:    []string{"https://h/still-works"},
			DataAttrValues: []string{"/relative/dropped"},
		})

		if len(res.Faults) != 1 {
			t.Fatalf("Faults = %v, want 1 fault", res.Faults)
		}
		if len(res.Candidates) != 1 || res.Candidates[0] != "https://h/still-works" {
			t.Errorf("Candidates = %v, want [https://h/still-works]", res.Candidates)
		}
	})
}

// TestPaginationExpansion tests the look-ahead page synthesis rule.
func TestPaginationExpansion(t *testing.T) {
	t.Parallel()

	t.Run("page=3 expands to pages 4 through 8", func(t *testing.T) {
		t.Parallel()

		d := newTestDiscoverer(5)
		res := d.Discover(&model.Snapshot{
			PageURL:     "https://h/",
			AnchorHrefs: []string{"https://h/jobs?page=3"},
		})

		want := []string{
			"https://h/jobs?page=3",
			"https://h/jobs?page=4",
			"https://h/jobs?page=5",
			"https://h/jobs?page=6",
			"https://h/jobs?page=7",
			"https://h/jobs?page=8",
		}
		if len(res.Candidates) != len(want) {
			t.Fatalf("Candidates = %v, want %v", res.Candidates, want)
		}
		for i, w := range want {
			if res.Candidates[i] != w {
				t.Errorf("Candidates[%d] = %q, want %q", i, res.Candidates[i], w)
			}
		}
	})

	t.Run("expansion preserves other query parameters", func(t *testing.T) {
		t.Parallel()

		d := newTestDiscoverer(2)
		res := d.Discover(&model.Snapshot{
			PageURL:     "https://h/",
			AnchorHrefs: []string{"https://h/jobs?loc=london&page=1"},
		})

		joined := strings.Join(res.Candidates, " ")
		for _, want := range []string{
			"https://h/jobs?loc=london&page=2",
			"https://h/jobs?loc=london&page=3",
		} {
			if !strings.Contains(joined, want) {
				t.Errorf("missing expanded candidate %q in %v", want, res.Candidates)
			}
		}
	})

	t.Run("non-numeric page values are ignored", func(t *testing.T) {
		t.Parallel()

		d := newTestDiscoverer(5)
		res := d.Discover(&model.Snapshot{
			PageURL:     "https://h/",
			AnchorHrefs: []string{"https://h/jobs?page=last", "https://h/jobs?page=-2"},
		})

		if len(res.Candidates) != 2 {
			t.Errorf("Candidates = %v, want only the two originals", res.Candidates)
		}
	})

	t.Run("out-of-scope expansions are dropped", func(t *testing.T) {
		t.Parallel()

		d := newTestDiscoverer(5)
		res := d.Discover(&model.Snapshot{
			PageURL:      "https://h/",
			CanonicalURL: "https://other.example/list?page=2",
		})

		// The canonical itself is kept, but its expansions are not:
		// other.example is out of scope.
		if len(res.Candidates) != 1 {
			t.Errorf("Candidates = %v, want only the canonical", res.Candidates)
		}
	})
}
