// Package discover turns a rendered page snapshot into the set of
// normalized, in-scope URLs that feed the crawl frontier.
//
// Each extraction heuristic runs independently and contributes its
// candidates to a union; a heuristic that fails (unparsable base URL,
// malformed script text) is skipped without affecting the others, so a
// single broken widget never costs the page its remaining links.
//
// Design decision: The heuristics scan script text with regular
// expressions instead of parsing JavaScript because the goal is URL
// harvesting, not semantics. A token scan finds endpoint strings inside
// minified or broken scripts that no parser would accept, and false
// positives are cheap: every candidate still has to survive
// normalization and the scope filter before it reaches the frontier.
package discover
