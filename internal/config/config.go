package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen to be polite toward small municipal servers
// while still making progress across thousands of sites in one batch.
const (
	// DefaultTimeout is the per-request timeout. Government sites are
	// often slow shared hosting; 30 seconds catches most of them without
	// letting one dead host pin a worker for minutes.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxDepth limits link-following distance from each seed.
	// Contact pages are almost always within two clicks of the front
	// page, so a small default keeps runs focused.
	DefaultMaxDepth = 2

	// DefaultMaxPages is the per-run page budget. This prevents runaway
	// crawling on large sites or calendar-style infinite page generators.
	DefaultMaxPages = 500

	// DefaultMaxElapsed is the per-run wall-clock budget. Zero means no
	// time limit; the page budget still applies.
	DefaultMaxElapsed = 0 * time.Second

	// DefaultPerHostDelay is the minimum delay between requests to the
	// same host. One second is conservative and respectful of small
	// servers. Rate limiting is per host, never global, so one slow
	// host does not starve progress on others.
	DefaultPerHostDelay = 1 * time.Second

	// DefaultMaxRetries is the retry limit for transient failures
	// (timeout, connection reset, 5xx, 429).
	DefaultMaxRetries = 3

	// DefaultBackoffBase is the base for exponential retry backoff.
	// Attempt n waits roughly base * 2^n plus jitter.
	DefaultBackoffBase = 2 * time.Second

	// DefaultConcurrency is the number of crawl workers. Workers block
	// on per-host rate limits, so this mostly bounds sockets and memory.
	DefaultConcurrency = 8

	// DefaultCacheTTL is the freshness window for cached responses
	// across runs. Re-crawl cadence varies by deployment, so this is a
	// policy knob rather than a hard-coded constant. Zero disables
	// cross-run reuse; within-run reuse always applies.
	DefaultCacheTTL = 24 * time.Hour

	// DefaultUserAgent identifies govharvest in HTTP requests. A
	// descriptive User-Agent lets site operators identify crawler
	// traffic in their logs.
	DefaultUserAgent = "govharvest/1.0 (+https://github.com/civiccrawl/govharvest)"

	// AppName is the application name used for XDG directory paths.
	AppName = "govharvest"
)

// Config holds all configuration options for one crawl run.
// It is populated from CLI flags and an optional YAML file, then passed
// through the application via dependency injection rather than global
// state.
type Config struct {
	// Seeds is the list of seed URLs to start crawling from.
	Seeds []string

	// SeedFile is the path to an authoritative seed list CSV with
	// columns domain, level, name, state_code. Entries are used both as
	// seeds and as the discoverer's allow-list.
	SeedFile string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxDepth is the maximum link distance from a seed. Depth 0 means
	// fetch only the seed pages.
	MaxDepth int

	// MaxPages is the total page budget for the run.
	MaxPages int

	// MaxElapsed is the wall-clock budget for the run. Zero means
	// unlimited.
	MaxElapsed time.Duration

	// PerHostDelay is the minimum delay between requests to one host.
	PerHostDelay time.Duration

	// MaxRetries is the retry limit for transient fetch failures.
	MaxRetries int

	// BackoffBase is the base duration for exponential retry backoff.
	BackoffBase time.Duration

	// Concurrency is the number of concurrent crawl workers.
	Concurrency int

	// CacheEnabled turns the persistent response cache on or off.
	CacheEnabled bool

	// CacheTTL is how long cached responses stay fresh across runs.
	CacheTTL time.Duration

	// CacheDir is the directory for the SQLite cache database.
	// Defaults to the XDG data directory.
	CacheDir string

	// UserAgent is the User-Agent header for outbound requests.
	UserAgent string

	// RespectRobots enables robots.txt checks before fetching.
	RespectRobots bool

	// Render enables the headless-browser fetch strategy for pages the
	// static fetcher cannot extract text from. Off by default; rendering
	// is a pluggable strategy, not part of the core fetch contract.
	Render bool

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// JSONReport selects JSON report output. Mutually exclusive with
	// MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown report output. Mutually exclusive
	// with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. Empty means
	// stdout.
	ReportFile string

	// CSVFile is an optional path for a flat CSV export of the contact
	// records, written in addition to the report.
	CSVFile string

	// SiteOverrides holds per-site settings loaded from the YAML
	// configuration file.
	SiteOverrides *File
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Timeout:       DefaultTimeout,
		MaxDepth:      DefaultMaxDepth,
		MaxPages:      DefaultMaxPages,
		MaxElapsed:    DefaultMaxElapsed,
		PerHostDelay:  DefaultPerHostDelay,
		MaxRetries:    DefaultMaxRetries,
		BackoffBase:   DefaultBackoffBase,
		Concurrency:   DefaultConcurrency,
		CacheEnabled:  true,
		CacheTTL:      DefaultCacheTTL,
		CacheDir:      DefaultCacheDir(),
		UserAgent:     DefaultUserAgent,
		RespectRobots: true,
	}
}

// DefaultCacheDir returns the XDG data directory for the cache database.
func DefaultCacheDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks the configuration for errors that would make a run
// meaningless or unsafe. Configuration errors are the only fatal errors
// in the engine; everything later is recorded per page and survived.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 && c.SeedFile == "" {
		return ErrNoSeeds
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}
	if c.PerHostDelay < 0 {
		return ErrInvalidPerHostDelay
	}
	if c.MaxRetries > 0 && c.BackoffBase <= 0 {
		return ErrInvalidBackoffBase
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
