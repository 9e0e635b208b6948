// Package render defines the page-rendering capability the crawler
// consumes, plus two implementations of it.
//
// # Architecture
//
// The crawl core never talks to a browser directly. It holds an Engine,
// asks it for one Page per worker, and drives each Page through the
// navigate / scroll / click / extract cycle. Everything behind the Page
// interface is replaceable: the coordinator tests run against a scripted
// fake, and production picks one of:
//
//   - ChromeEngine: a headless Chrome instance driven over the DevTools
//     protocol (chromedp). Executes JavaScript, so client-side rendered
//     links, lazy-loaded lists, and "view more" widgets all materialize.
//   - FetchEngine: a plain HTTP GET plus HTML parse (goquery over
//     x/net/html). No script execution, but it needs no browser binary
//     and is an order of magnitude cheaper per page.
//
// Design decision: Engine hands out long-lived Pages (one per worker,
// reused across navigations) rather than a Page per URL because browser
// tab creation is expensive and the original per-worker tab model keeps
// Chrome's memory bounded at the worker count.
package render
