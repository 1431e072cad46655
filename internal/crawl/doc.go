// Package crawl drives one crawl run: a bounded pool of workers pulls
// URLs from the frontier, fetches them, extracts contact candidates,
// and feeds discovered links back until the frontier is empty or a
// budget runs out.
//
// A single page failing to fetch or parse never aborts the run; it is
// counted, sampled into the report, and the run proceeds. Cancelling
// the run's context stops it promptly and returns the best-effort
// report accumulated so far.
package crawl
