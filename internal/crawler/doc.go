// Package crawler coordinates the crawl: it runs N workers over the
// shared frontier, drives the renderer, and decides when the run is over.
//
// # Worker state machine
//
// Each worker cycles through explicit states:
//
//	Idle → Fetching → Extracting → Settling → Idle
//	  ↘ Draining → Done (or back to Idle if the queue refilled)
//
// Idle dequeues the next URL or, when nothing is ready, moves to
// Draining. Fetching navigates the renderer with a bounded timeout; a
// timeout or navigation error still counts as a completed visit with an
// empty discovery result. Extracting interacts with the page (scroll,
// widget clicks) and runs the discovery heuristics. Settling records the
// visit, feeds new candidates to the frontier, and enforces the
// politeness delay. Draining re-checks the queue once after a short
// sleep and exits if it is still empty.
//
// Design decision: The termination policy is a single idle re-check, not
// a multi-round quiescence protocol. A worker can therefore exit while a
// sibling is mid-navigation and about to enqueue more URLs, slightly
// under-crawling in the worst case. This is a deliberate trade: the
// simple policy is easy to reason about, and the remaining workers pick
// up whatever the departed worker would have handled.
package crawler
