// Package cache provides SQLite-backed persistence of fetch results,
// keyed by normalized URL, so repeated crawl runs do not re-fetch
// unchanged pages.
//
// Entries are never mutated in place: a refresh replaces the whole row.
// Freshness is a caller-supplied TTL policy, since acceptable re-crawl
// cadence varies by deployment.
package cache
