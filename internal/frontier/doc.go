// Package frontier implements the crawl frontier: the shared structure that
// tracks which URLs are queued, in flight, or already visited.
//
// # Architecture
//
// The Frontier is one mutex-guarded aggregate of four pieces of state: the
// pending FIFO queue, the enqueued set, the seen map, and the first-seen
// order log. Callers only interact through the atomic operations
// EnqueueIfNew, Dequeue, MarkSeen, and the read-only counters; the raw sets
// are never exposed.
//
// Design decision: We guard everything with a single sync.Mutex rather than
// splitting the queue into a channel because:
//  1. EnqueueIfNew must check two sets and push in one atomic step
//  2. Dequeue must be non-blocking so workers can distinguish "nothing
//     ready right now" from "crawl finished"
//  3. A channel-fed queue cannot answer QueueCount, which the drain
//     protocol depends on
//
// # Invariants
//
//   - A URL enters the enqueued set at most once before it is seen.
//   - The seen map and the pending queue are disjoint: once visited, a URL
//     is never re-queued.
//   - MarkSeen is first-write-wins; a VisitRecord is never mutated.
package frontier
