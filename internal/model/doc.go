// Package model defines the core data structures shared across the
// govharvest crawl engine: fetch requests and results, discovered
// government sites, contact candidates and records, and the final
// crawl report.
//
// Types in this package are plain data carriers. Components that
// produce them own their lifecycle; consumers treat them as read-only.
package model
