// Package main provides the entry point for the govharvest CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for govharvest.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "govharvest",
		Short: "Contact harvesting engine for government websites",
		Long: `govharvest crawls government websites (federal, state, county, city) and
extracts public contact information: email addresses, phone numbers, and
postal addresses. Obfuscated emails ("clerk [at] example [dot] gov") are
decoded, duplicates are merged across pages, and newly discovered
government sites are reported for seed list curation.

Crawling is polite by default: per-host rate limiting, robots.txt
compliance, and a persistent response cache that avoids re-fetching
pages across runs.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
