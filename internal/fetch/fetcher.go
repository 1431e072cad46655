package fetch

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/civiccrawl/govharvest/internal/cache"
	"github.com/civiccrawl/govharvest/internal/frontier"
	"github.com/civiccrawl/govharvest/internal/model"
)

// Fetcher retrieves URLs with caching, per-host rate limiting, and
// bounded retry with exponential backoff. Ordinary network and HTTP
// failures never surface as Go errors; they come back as outcome-tagged
// FetchResults so a long batch run can keep going.
type Fetcher struct {
	// strategy performs the actual retrieval attempts.
	strategy Strategy

	// render is the optional headless fallback for script-only pages.
	// Nil when rendering is disabled.
	render Strategy

	// store is the persistent response cache. Nil disables caching.
	store *cache.Store

	// cacheTTL is the freshness window for cached responses.
	cacheTTL time.Duration

	// limiter enforces per-host politeness.
	limiter *HostLimiter

	// robots gates fetches on robots.txt. Nil disables the check.
	robots *RobotsGate

	// maxRetries bounds retry attempts for transient failures.
	maxRetries int

	// backoffBase is the base for exponential backoff between retries.
	backoffBase time.Duration

	// logger receives per-fetch diagnostics.
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithCache enables the persistent response cache with the given TTL.
func WithCache(store *cache.Store, ttl time.Duration) Option {
	return func(f *Fetcher) {
		f.store = store
		f.cacheTTL = ttl
	}
}

// WithRetries sets the retry limit and backoff base for transient
// failures.
func WithRetries(maxRetries int, backoffBase time.Duration) Option {
	return func(f *Fetcher) {
		f.maxRetries = maxRetries
		f.backoffBase = backoffBase
	}
}

// WithLimiter sets the per-host rate limiter.
func WithLimiter(limiter *HostLimiter) Option {
	return func(f *Fetcher) {
		f.limiter = limiter
	}
}

// WithRobots enables robots.txt checks.
func WithRobots(gate *RobotsGate) Option {
	return func(f *Fetcher) {
		f.robots = gate
	}
}

// WithRenderFallback enables the headless-render strategy for pages
// the static strategy cannot extract text from.
func WithRenderFallback(render Strategy) Option {
	return func(f *Fetcher) {
		f.render = render
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher using the given retrieval strategy.
func New(strategy Strategy, opts ...Option) *Fetcher {
	f := &Fetcher{
		strategy:    strategy,
		maxRetries:  3,
		backoffBase: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// NewHTTPClient builds the HTTP client shared by the static strategy
// and the robots gate.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext:         (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Fetch retrieves one URL. The request URL must already be normalized.
//
// The cache is consulted first; a fresh entry short-circuits the
// network entirely. On a miss the fetcher waits for the host's rate
// limit, checks robots.txt, and attempts the fetch, retrying transient
// failures with exponential backoff plus jitter. Successful results
// are written back to the cache before returning.
func (f *Fetcher) Fetch(ctx context.Context, req model.FetchRequest) *model.FetchResult {
	if f.store != nil {
		if cached, hit, err := f.store.Get(ctx, req.URL, f.cacheTTL); err != nil {
			f.logger.Warn("cache lookup failed", "url", req.URL, "error", err)
		} else if hit {
			f.logger.Debug("cache hit", "url", req.URL)
			return cached
		}
	}

	host := frontier.Host(req.URL)

	if f.robots != nil && !f.robots.Allowed(ctx, req.URL) {
		return &model.FetchResult{
			URL:       req.URL,
			Outcome:   model.OutcomeHTTPError,
			FetchedAt: time.Now(),
			Error:     "disallowed by robots.txt",
		}
	}

	var result *model.FetchResult
	for attempt := 0; ; attempt++ {
		if err := f.limiter.Wait(ctx, host); err != nil {
			return f.cancelled(req.URL, attempt, err)
		}

		result = f.attempt(ctx, req.URL)
		result.Attempts = attempt + 1

		if !f.transient(result) {
			break
		}

		if attempt >= f.maxRetries {
			result.Outcome = model.OutcomeExhaustedRetries
			break
		}

		wait := f.backoff(attempt)
		f.logger.Debug("retrying after transient failure",
			"url", req.URL,
			"attempt", attempt+1,
			"outcome", string(result.Outcome),
			"wait", wait,
		)
		select {
		case <-ctx.Done():
			return f.cancelled(req.URL, attempt+1, ctx.Err())
		case <-time.After(wait):
		}
	}

	if f.render != nil && NeedsRender(result) {
		if rendered, err := f.render.Do(ctx, req.URL); err != nil {
			f.logger.Warn("render fallback failed", "url", req.URL, "error", err)
		} else {
			rendered.Outcome = model.OutcomeOK
			rendered.Attempts = result.Attempts
			result = rendered
		}
	}

	if f.store != nil && result.Outcome.Success() {
		if err := f.store.Put(ctx, result); err != nil {
			f.logger.Warn("cache write failed", "url", req.URL, "error", err)
		}
	}

	return result
}

// Invalidate removes any cached entry for the URL.
func (f *Fetcher) Invalidate(ctx context.Context, url string) error {
	if f.store == nil {
		return nil
	}
	return f.store.Invalidate(ctx, url)
}

// attempt performs one retrieval and classifies the raw result.
func (f *Fetcher) attempt(ctx context.Context, url string) *model.FetchResult {
	result, err := f.strategy.Do(ctx, url)
	if err != nil {
		return &model.FetchResult{
			URL:       url,
			Outcome:   classifyNetworkError(err),
			FetchedAt: time.Now(),
			Error:     err.Error(),
		}
	}

	result.Outcome = classifyStatus(result.StatusCode)
	if !result.Outcome.Success() && result.Error == "" {
		result.Error = http.StatusText(result.StatusCode)
	}
	return result
}

// transient reports whether the outcome should be retried.
// Timeouts, connection failures, 5xx, and 429 are transient; other 4xx
// are terminal client errors.
func (f *Fetcher) transient(r *model.FetchResult) bool {
	switch r.Outcome {
	case model.OutcomeTimeout, model.OutcomeNetworkError:
		return true
	case model.OutcomeHTTPError:
		return r.StatusCode == http.StatusTooManyRequests || r.StatusCode >= 500
	default:
		return false
	}
}

// backoff computes the wait before retry attempt n: base * 2^n plus up
// to 50% jitter, so synchronized workers don't hammer a recovering host
// in lockstep.
func (f *Fetcher) backoff(attempt int) time.Duration {
	wait := f.backoffBase << uint(attempt)
	jitter := time.Duration(rand.Int63n(int64(wait)/2 + 1)) //nolint:gosec // Jitter needs no crypto randomness
	return wait + jitter
}

// cancelled builds the result for a run stopped mid-fetch.
func (f *Fetcher) cancelled(url string, attempts int, err error) *model.FetchResult {
	return &model.FetchResult{
		URL:       url,
		Outcome:   model.OutcomeNetworkError,
		FetchedAt: time.Now(),
		Attempts:  attempts,
		Error:     err.Error(),
	}
}

// classifyStatus maps an HTTP status code to an outcome tag. Transient
// server-side statuses (5xx, 429) keep the http-error tag; the retry
// loop decides whether to try again.
func classifyStatus(status int) model.Outcome {
	if status >= 200 && status < 400 {
		return model.OutcomeOK
	}
	return model.OutcomeHTTPError
}

// classifyNetworkError distinguishes timeouts from other connection
// failures.
func classifyNetworkError(err error) model.Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.OutcomeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.OutcomeTimeout
	}
	return model.OutcomeNetworkError
}
