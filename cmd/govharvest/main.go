// Package main provides the entry point for the govharvest CLI.
//
// govharvest crawls government websites and extracts public contact
// information (email addresses, phone numbers, postal addresses) into
// a deduplicated, validated report.
//
// Usage:
//
//	govharvest crawl https://example.gov
//	govharvest crawl --seed-file seeds.csv
//
// See --help for all available options.
package main

// main is the entry point for govharvest.
func main() {
	Execute()
}
