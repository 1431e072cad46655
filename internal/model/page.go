package model

import (
	"strings"
	"time"
)

// MaxBodySize is the maximum response body size retained on a
// FetchResult. Larger bodies are truncated to this size to bound memory
// use against unknown third-party sites.
const MaxBodySize = 5 * 1024 * 1024 // 5 MB

// Outcome tags the result of one fetch.
type Outcome string

// Fetch outcomes. Ordinary network and HTTP failures are reported
// through these tags rather than error returns; only programmer errors
// surface as Go errors from the fetcher.
const (
	// OutcomeOK is a successful fetch (2xx/3xx after redirects).
	OutcomeOK Outcome = "ok"

	// OutcomeHTTPError is a terminal HTTP error (4xx other than 429).
	OutcomeHTTPError Outcome = "http-error"

	// OutcomeNetworkError is a connection-level failure.
	OutcomeNetworkError Outcome = "network-error"

	// OutcomeTimeout is a request that exceeded its deadline.
	OutcomeTimeout Outcome = "timeout"

	// OutcomeExhaustedRetries means every retry of a transient failure
	// (timeout, connection reset, 5xx, 429) failed.
	OutcomeExhaustedRetries Outcome = "exhausted-retries"

	// OutcomeBudgetExceeded means the frontier pruned the URL before it
	// was fetched. This is a normal scheduling outcome, not an error.
	OutcomeBudgetExceeded Outcome = "budget-exceeded"
)

// Success reports whether the outcome carries a usable response body.
func (o Outcome) Success() bool {
	return o == OutcomeOK
}

// FetchRequest describes one URL to fetch. Immutable once created.
type FetchRequest struct {
	// URL is the normalized target URL.
	URL string

	// Depth is the link distance from the seed that led here.
	Depth int

	// Referrer is the page that linked to this URL, if any.
	Referrer string
}

// FetchResult is the outcome of one fetch. It is owned by the fetcher
// call that produced it and read-only downstream.
type FetchResult struct {
	// URL is the normalized URL that was fetched.
	URL string `json:"url"`

	// Outcome tags how the fetch ended.
	Outcome Outcome `json:"outcome"`

	// StatusCode is the HTTP status, or 0 for network-level failures.
	StatusCode int `json:"status_code,omitempty"`

	// Body is the raw response body, capped at MaxBodySize.
	Body []byte `json:"-"`

	// ContentType is the MIME type from the Content-Type header,
	// without parameters.
	ContentType string `json:"content_type,omitempty"`

	// FetchedAt is when the response was received.
	FetchedAt time.Time `json:"fetched_at"`

	// CacheHit is true when the result was served from the cache store
	// without a network request.
	CacheHit bool `json:"cache_hit"`

	// Attempts is the number of HTTP attempts made, including the one
	// that produced this result. Zero for cache hits.
	Attempts int `json:"attempts,omitempty"`

	// Error describes the underlying failure for non-ok outcomes.
	Error string `json:"error,omitempty"`
}

// IsHTML reports whether the result body should be parsed as HTML.
func (r *FetchResult) IsHTML() bool {
	return strings.Contains(r.ContentType, "text/html") ||
		strings.Contains(r.ContentType, "application/xhtml+xml")
}

// TruncateBody enforces the MaxBodySize cap in place.
func (r *FetchResult) TruncateBody() {
	if len(r.Body) > MaxBodySize {
		r.Body = r.Body[:MaxBodySize]
	}
}
