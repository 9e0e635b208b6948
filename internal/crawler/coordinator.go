package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nao1215/sitespider/internal/config"
	"github.com/nao1215/sitespider/internal/discover"
	"github.com/nao1215/sitespider/internal/frontier"
	"github.com/nao1215/sitespider/internal/model"
	"github.com/nao1215/sitespider/internal/render"
	"github.com/nao1215/sitespider/internal/urlutil"
)

// dataAttrNames are the element attributes harvested for lazy-link
// discovery.
var dataAttrNames = []string{"data-url", "data-href", "data-link", "data-target-url"}

// defaultIdleWait is how long a draining worker sleeps before
// re-checking the queue.
const defaultIdleWait = time.Second

// Coordinator runs one crawl: it owns the frontier, distributes URLs to
// workers, and exposes the ordered result set after termination.
type Coordinator struct {
	cfg      *config.Config
	engine   render.Engine
	frontier *frontier.Frontier
	disc     *discover.Discoverer
	logger   *slog.Logger
	runID    string
	idleWait time.Duration
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithIdleWait overrides the drain re-check interval. Tests shorten it
// so termination scenarios run in milliseconds.
func WithIdleWait(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.idleWait = d
		}
	}
}

// New creates a Coordinator for one crawl run. The engine is injected so
// callers (and tests) choose how pages get rendered.
func New(cfg *config.Config, engine render.Engine, opts ...Option) *Coordinator {
	scope := urlutil.NewHostSet(cfg.AllowedHosts)
	c := &Coordinator{
		cfg:      cfg,
		engine:   engine,
		frontier: frontier.New(),
		disc:     discover.New(scope, cfg.PaginationLookahead),
		runID:    uuid.NewString(),
		idleWait: defaultIdleWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// RunID identifies this crawl run, used to key persisted results.
func (c *Coordinator) RunID() string {
	return c.runID
}

// SeenCount returns the number of pages visited so far. Safe to call
// concurrently with a running crawl, e.g. from a progress ticker.
func (c *Coordinator) SeenCount() int {
	return c.frontier.SeenCount()
}

// Run executes the crawl until the frontier drains, the page cap is
// reached, or ctx is cancelled. It always returns the entries collected
// so far in first-seen order; on cancellation the context error is
// returned alongside them so the caller can still write partial output.
func (c *Coordinator) Run(ctx context.Context) ([]model.SitemapEntry, error) {
	seeded := 0
	for _, seed := range c.cfg.Seeds {
		normalized := urlutil.Normalize(seed)
		if normalized == "" {
			c.logger.Warn("skipping invalid seed URL", "seed", seed)
			continue
		}
		c.frontier.EnqueueIfNew(normalized)
		seeded++
	}
	if seeded == 0 {
		return nil, errors.New("no valid seed URLs after normalization")
	}

	c.logger.Info("starting crawl",
		"run_id", c.runID,
		"seeds", seeded,
		"workers", c.cfg.Concurrency,
		"max_pages", c.cfg.MaxPages,
	)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < c.cfg.Concurrency; i++ {
		g.Go(func() error {
			return c.runWorker(gctx, i)
		})
	}
	err := g.Wait()

	entries := c.frontier.Entries()
	c.logger.Info("crawl finished",
		"run_id", c.runID,
		"pages", len(entries),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return entries, err
}

// runWorker is one worker's lifecycle: acquire a page, cycle the state
// machine until Done, release the page. A failure to acquire the page is
// the run's only fatal error and cancels the sibling workers through
// the errgroup.
func (c *Coordinator) runWorker(ctx context.Context, id int) error {
	page, err := c.engine.NewPage(ctx)
	if err != nil {
		return fmt.Errorf("worker %d: failed to acquire renderer page: %w", id, err)
	}
	defer page.Close() //nolint:errcheck // Page close is best-effort on shutdown

	w := &worker{
		id:     id,
		page:   page,
		coord:  c,
		logger: c.logger.With("worker", id),
	}
	if c.cfg.RequestDelay > 0 {
		w.limiter = rate.NewLimiter(rate.Every(c.cfg.RequestDelay), 1)
	}
	return w.run(ctx)
}

// worker is one crawl worker: a renderer page plus the state-machine
// bookkeeping for the URL currently in flight.
type worker struct {
	id      int
	page    render.Page
	coord   *Coordinator
	logger  *slog.Logger
	limiter *rate.Limiter

	// current is the URL in flight between Idle and Settling.
	current string

	// nav is the navigation outcome for current, nil after a render
	// fault.
	nav *render.NavInfo

	// found is the discovery result for current.
	found discover.Result
}

// run cycles the state machine until the worker reaches Done or the
// context is cancelled. Cancellation stops the worker before its next
// navigation; the in-flight visit is simply dropped.
func (w *worker) run(ctx context.Context) error {
	state := stateIdle
	for state != stateDone {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch state {
		case stateIdle:
			state = w.idle()
		case stateFetching:
			state = w.fetch(ctx)
		case stateExtracting:
			state = w.extract(ctx)
		case stateSettling:
			var err error
			state, err = w.settle(ctx)
			if err != nil {
				return err
			}
		case stateDraining:
			var err error
			state, err = w.drain(ctx)
			if err != nil {
				return err
			}
		}
	}
	w.logger.Debug("worker done")
	return nil
}

// idle pulls the next URL. An already-seen URL can surface here when it
// was enqueued, dequeued by another worker, and re-discovered in the
// window before MarkSeen; it is skipped without counting as a visit.
func (w *worker) idle() workerState {
	if w.coord.frontier.SeenCount() >= w.coord.cfg.MaxPages {
		return stateDone
	}

	url, ok := w.coord.frontier.Dequeue()
	if !ok {
		return stateDraining
	}
	if w.coord.frontier.IsSeen(url) {
		return stateIdle
	}
	w.current = url
	return stateFetching
}

// fetch navigates to the current URL. Faults are absorbed: the visit
// proceeds to Extracting with no navigation result, which yields an
// empty discovery set but still marks the URL seen.
func (w *worker) fetch(ctx context.Context) workerState {
	w.nav = nil
	w.found = discover.Result{}

	info, err := w.page.Navigate(ctx, w.current, w.coord.cfg.NavTimeout)
	switch {
	case err == nil:
		w.nav = info
	case errors.Is(err, render.ErrNavigationTimeout):
		w.logger.Warn("navigation timeout", "url", w.current)
	default:
		w.logger.Warn("navigation failed", "url", w.current, "error", err)
	}
	return stateExtracting
}

// extract runs the interaction phase and the discovery heuristics
// against the rendered page. Every step is best-effort; a fault in one
// heuristic never costs the page its remaining links.
func (w *worker) extract(ctx context.Context) workerState {
	if w.nav == nil {
		return stateSettling
	}

	cfg := w.coord.cfg
	if err := w.page.ScrollToBottom(ctx, cfg.ScrollRounds); err != nil {
		w.logger.Debug("scroll failed", "url", w.current, "error", err)
	}
	if err := w.page.ClickMatching(ctx, cfg.ViewMoreSelectors, cfg.ClickRetryLimit); err != nil {
		w.logger.Debug("widget clicking failed", "url", w.current, "error", err)
	}

	snap := &model.Snapshot{
		PageURL:      w.current,
		StatusCode:   w.nav.StatusCode,
		LastModified: w.nav.LastModified,
	}

	var err error
	if snap.CanonicalURL, err = w.page.CanonicalHref(ctx); err != nil {
		w.logger.Debug("canonical extraction failed", "url", w.current, "error", err)
	}
	if snap.AnchorHrefs, err = w.page.ExtractAnchors(ctx); err != nil {
		w.logger.Debug("anchor extraction failed", "url", w.current, "error", err)
	}
	if snap.DataAttrValues, err = w.page.ExtractAttributeValues(ctx, dataAttrNames); err != nil {
		w.logger.Debug("data attribute extraction failed", "url", w.current, "error", err)
	}
	if snap.OnclickScripts, err = w.page.ExtractAttributeValues(ctx, []string{"onclick"}); err != nil {
		w.logger.Debug("onclick extraction failed", "url", w.current, "error", err)
	}
	if snap.InlineScripts, err = w.page.ExtractScriptTexts(ctx); err != nil {
		w.logger.Debug("script extraction failed", "url", w.current, "error", err)
	}

	w.found = w.coord.disc.Discover(snap)
	for _, fault := range w.found.Faults {
		w.logger.Debug("discovery heuristic skipped", "url", w.current, "error", fault)
	}
	return stateSettling
}

// settle records the visit, feeds discoveries back to the frontier, and
// enforces the inter-request delay.
func (w *worker) settle(ctx context.Context) (workerState, error) {
	statusCode := 0
	lastModified := ""
	if w.nav != nil {
		statusCode = w.nav.StatusCode
		lastModified = w.nav.LastModified
	}
	w.coord.frontier.MarkSeen(w.current, statusCode, lastModified)
	w.logger.Info("crawled", "url", w.current, "status", statusCode, "discovered", len(w.found.Candidates))

	for _, candidate := range w.found.Candidates {
		if !w.coord.frontier.IsSeen(candidate) {
			w.coord.frontier.EnqueueIfNew(candidate)
		}
	}

	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			return stateDone, err
		}
	}
	return stateIdle, nil
}

// drain decides whether the crawl is over for this worker: cap reached,
// or the queue is still empty after one idle wait. A queue refilled by a
// sibling's discoveries sends the worker back to Idle.
func (w *worker) drain(ctx context.Context) (workerState, error) {
	if w.coord.frontier.SeenCount() >= w.coord.cfg.MaxPages {
		w.logger.Debug("page cap reached", "cap", w.coord.cfg.MaxPages)
		return stateDone, nil
	}

	select {
	case <-ctx.Done():
		return stateDone, ctx.Err()
	case <-time.After(w.coord.idleWait):
	}

	if w.coord.frontier.QueueCount() == 0 {
		w.logger.Debug("queue empty after idle wait")
		return stateDone, nil
	}
	return stateIdle, nil
}
