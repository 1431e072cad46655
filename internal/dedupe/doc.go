// Package dedupe merges raw contact candidates into canonical contact
// records. Candidates stream in as pages complete, in whatever order
// the workers finish; merging is commutative and idempotent, so the
// final record set depends only on what was found, never on timing.
package dedupe
