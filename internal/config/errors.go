package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSeeds is returned when no seed URL or seed list file is
	// specified. The crawler has nowhere to start without one.
	ErrNoSeeds = errors.New("no seeds specified: provide a seed URL or use --seed-file")

	// ErrInvalidTimeout is returned when the per-request timeout is not
	// positive. A zero timeout would fail every request immediately.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxDepth is returned when the crawl depth is negative.
	// Depth 0 means fetch only the seed pages.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidMaxPages is returned when the page budget is not positive.
	// A budget of zero would prune every URL before fetching.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidConcurrency is returned when the worker count is not
	// positive. Zero workers would stall the run forever.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxRetries is returned when the retry limit is negative.
	// Use 0 to disable retries entirely.
	ErrInvalidMaxRetries = errors.New("invalid max retries: must be non-negative")

	// ErrInvalidPerHostDelay is returned when the per-host delay is
	// negative. Use 0 for no delay between same-host requests.
	ErrInvalidPerHostDelay = errors.New("invalid per-host delay: must be non-negative")

	// ErrInvalidBackoffBase is returned when the backoff base is not
	// positive while retries are enabled.
	ErrInvalidBackoffBase = errors.New("invalid backoff base: must be positive when retries are enabled")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
