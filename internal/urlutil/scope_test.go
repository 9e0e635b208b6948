package urlutil

import "testing"

// TestHostSetInScope tests crawl-scope membership checks.
func TestHostSetInScope(t *testing.T) {
	t.Parallel()

	allowed := NewHostSet([]string{"h", "www.example.com", "Example.co.uk"})

	t.Run("accepts allowed hosts", func(t *testing.T) {
		t.Parallel()

		urls := []string{
			"https://h/p",
			"http://www.example.com/jobs?page=2",
			"https://example.co.uk/",
			"https://WWW.EXAMPLE.COM/About",
		}
		for _, u := range urls {
			if !allowed.InScope(u) {
				t.Errorf("InScope(%q) = false, want true", u)
			}
		}
	})

	t.Run("rejects other hosts", func(t *testing.T) {
		t.Parallel()

		urls := []string{
			"https://other.example/x",
			"https://sub.www.example.com/",
			"https://example.com/", // www-less variant not in set
			"https://h:8080/p",     // port makes it a different host
			"https://evil.com/h",   // allowed host only in the path
			"https://h.evil.com/",  // allowed host as subdomain label
		}
		for _, u := range urls {
			if allowed.InScope(u) {
				t.Errorf("InScope(%q) = true, want false", u)
			}
		}
	})

	t.Run("fails closed on garbage", func(t *testing.T) {
		t.Parallel()

		urls := []string{"", "://", "http://\x7f/", "%zz"}
		for _, u := range urls {
			if allowed.InScope(u) {
				t.Errorf("InScope(%q) = true, want false", u)
			}
		}
	})

	t.Run("empty set rejects everything", func(t *testing.T) {
		t.Parallel()

		empty := NewHostSet(nil)
		if empty.InScope("https://h/") {
			t.Error("empty host set must reject all URLs")
		}
	})
}
