// Package extract scans page content for contact information: email
// addresses (including deliberately obfuscated ones), phone numbers,
// and postal addresses.
//
// # Pipeline
//
// HTML is reduced to visible text first, so matches inside script
// blocks or attribute soup don't produce garbage candidates. The text
// then goes through three passes: direct pattern matching, a
// deobfuscation pass that rewrites disguised emails ("name [at] agency
// [dot] gov", spaced-out addresses, reversed strings) into canonical
// form, and address heuristics. Every candidate is syntax-validated
// before it is emitted; invalid matches are discarded rather than
// emitted as low-confidence.
//
// Non-HTML documents reachable from crawled pages (PDF and friends) go
// through a TextExtractor collaborator first and then the same pattern
// pipeline, keeping format parsing separate from extraction logic.
package extract
