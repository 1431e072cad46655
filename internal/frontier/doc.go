// Package frontier implements the breadth-first crawl scheduler.
//
// # Architecture
//
// The Frontier tracks every URL known to one crawl run through a small
// state machine: unseen -> queued -> in-flight -> visited. Discovery
// enqueues, workers claim whole depth levels, and completions record
// the fetch outcome. Budgets (depth, page count, elapsed time) prune
// URLs into a terminal budget state instead of fetching them.
//
// # Ordering
//
// Levels are strictly breadth-first: every depth-n URL is claimed
// before any depth-n+1 URL. Within a level, links that look like
// contact or directory pages are claimed first, since they are the
// most likely to carry contact information under a tight budget.
// Completion order is not guaranteed; workers finish out of order.
//
// # Concurrency
//
// All state transitions happen under one mutex, so the visited-set
// check and queue insertion are atomic relative to concurrent
// discoverers. No other component touches frontier state directly.
package frontier
