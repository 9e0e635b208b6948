package frontier

import (
	"sync"

	"github.com/nao1215/sitespider/internal/model"
)

// Frontier tracks the state of every URL a crawl has encountered.
// All methods are safe for arbitrary concurrent use by multiple workers.
//
// Callers are expected to pass only normalized URLs (urlutil.Normalize);
// the Frontier treats its keys as opaque strings and performs no
// canonicalization of its own.
type Frontier struct {
	mu sync.Mutex

	// pending is the FIFO queue of URLs awaiting a worker.
	pending []string

	// enqueued holds URLs that have been scheduled but not yet marked
	// seen. Its only job is to stop the same URL being queued twice
	// while it waits or is in flight.
	enqueued map[string]bool

	// seen maps each completed URL to its immutable visit record.
	seen map[string]model.VisitRecord

	// seenOrder records first-seen order for deterministic output.
	seenOrder []string
}

// New creates an empty Frontier.
func New() *Frontier {
	return &Frontier{
		pending:  make([]string, 0, 64),
		enqueued: make(map[string]bool),
		seen:     make(map[string]model.VisitRecord),
	}
}

// EnqueueIfNew schedules a URL for crawling unless it is already queued,
// in flight, or visited. Redundant discovery of the same URL by any
// number of concurrent workers results in exactly one queue entry.
func (f *Frontier) EnqueueIfNew(url string) {
	if url == "" {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.enqueued[url] {
		return
	}
	if _, ok := f.seen[url]; ok {
		return
	}
	f.enqueued[url] = true
	f.pending = append(f.pending, url)
}

// Dequeue pops the next URL from the head of the pending queue.
// It never blocks: ok is false when nothing is ready right now, which
// callers must treat as "poll again later", not as end of crawl — the
// queue can refill from other workers' in-flight discoveries.
func (f *Frontier) Dequeue() (url string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.pending) == 0 {
		return "", false
	}
	url = f.pending[0]
	f.pending = f.pending[1:]
	return url, true
}

// MarkSeen records the completion of a crawl attempt for a URL.
// The first call wins: if the URL is already seen, the call is a no-op
// and the original VisitRecord is retained. The URL also leaves the
// enqueued set, so it can never be scheduled again.
func (f *Frontier) MarkSeen(url string, statusCode int, lastModified string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.seen[url]; ok {
		return
	}
	f.seen[url] = model.NewVisitRecord(statusCode, lastModified)
	f.seenOrder = append(f.seenOrder, url)
	delete(f.enqueued, url)
}

// IsSeen reports whether the URL's crawl attempt has completed.
func (f *Frontier) IsSeen(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.seen[url]
	return ok
}

// SeenCount returns the number of completed URLs. The value is exact at
// the moment of the call but may be stale by the time the caller acts
// on it; that staleness is acceptable for the cap and drain checks.
func (f *Frontier) SeenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

// QueueCount returns the number of URLs currently waiting in the
// pending queue.
func (f *Frontier) QueueCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// Entries returns the visited URLs with their metadata in first-seen
// order. The returned slice is a copy; it is safe to use after further
// frontier mutation, though it is normally called once after the crawl
// has terminated.
func (f *Frontier) Entries() []model.SitemapEntry {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries := make([]model.SitemapEntry, 0, len(f.seenOrder))
	for _, url := range f.seenOrder {
		rec := f.seen[url]
		entries = append(entries, model.SitemapEntry{
			URL:          url,
			LastModified: rec.LastModified,
			CrawledAt:    rec.CrawledAt,
		})
	}
	return entries
}
