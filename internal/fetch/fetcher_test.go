package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/civiccrawl/govharvest/internal/cache"
	"github.com/civiccrawl/govharvest/internal/model"
)

func newTestFetcher(t *testing.T, opts ...Option) *Fetcher {
	t.Helper()

	client := NewHTTPClient(5 * time.Second)
	strategy := NewStaticStrategy(client, "govharvest-test/1.0", nil)
	base := []Option{
		WithLimiter(NewHostLimiter(0)),
		WithRetries(3, time.Millisecond),
	}
	return New(strategy, append(base, opts...)...)
}

// TestFetcherSuccess tests a plain successful fetch.
func TestFetcherSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html>contact: info@example.gov</html>"))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	result := f.Fetch(context.Background(), model.FetchRequest{URL: srv.URL})

	if result.Outcome != model.OutcomeOK {
		t.Fatalf("expected ok, got %s (%s)", result.Outcome, result.Error)
	}
	if result.CacheHit {
		t.Error("expected cache-hit false on a network fetch")
	}
	if result.ContentType != "text/html" {
		t.Errorf("expected content type without parameters, got %q", result.ContentType)
	}
	if result.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", result.Attempts)
	}
}

// TestStaticStrategyHostHeaders tests that headers registered for a
// host are sent on requests to that host only.
func TestStaticStrategyHostHeaders(t *testing.T) {
	t.Parallel()

	var gotLanguage atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLanguage.Store(r.Header.Get("Accept-Language"))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	srvURL, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("failed to parse test server URL: %v", err)
	}

	client := NewHTTPClient(5 * time.Second)
	strategy := NewStaticStrategy(client, "govharvest-test/1.0", nil)
	strategy.SetHostHeaders(srvURL.Hostname(), map[string]string{
		"Accept-Language": "es-US",
	})
	strategy.SetHostHeaders("other.example.gov", map[string]string{
		"Accept-Language": "fr-CA",
	})

	if _, err := strategy.Do(context.Background(), srv.URL); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if got := gotLanguage.Load(); got != "es-US" {
		t.Errorf("expected per-host Accept-Language override, got %v", got)
	}
}

// TestFetcherRetriesTransient tests that a fetch failing twice with a
// transient error then succeeding yields an ok result.
func TestFetcherRetriesTransient(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	result := f.Fetch(context.Background(), model.FetchRequest{URL: srv.URL})

	if result.Outcome != model.OutcomeOK {
		t.Fatalf("expected ok after retries, got %s", result.Outcome)
	}
	if result.CacheHit {
		t.Error("expected cache-hit false")
	}
	if result.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", result.Attempts)
	}
}

// TestFetcherExhaustsRetries tests the terminal exhausted-retries outcome.
func TestFetcherExhaustsRetries(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	result := f.Fetch(context.Background(), model.FetchRequest{URL: srv.URL})

	if result.Outcome != model.OutcomeExhaustedRetries {
		t.Fatalf("expected exhausted-retries, got %s", result.Outcome)
	}
	if result.Attempts != 4 { // initial attempt + 3 retries
		t.Errorf("expected 4 attempts, got %d", result.Attempts)
	}
}

// TestFetcherTerminalClientError tests that 4xx (other than 429) is not
// retried.
func TestFetcherTerminalClientError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	result := f.Fetch(context.Background(), model.FetchRequest{URL: srv.URL})

	if result.Outcome != model.OutcomeHTTPError {
		t.Fatalf("expected http-error, got %s", result.Outcome)
	}
	if result.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", result.StatusCode)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected exactly 1 attempt for a terminal 4xx, got %d", n)
	}
}

// TestFetcherCache tests cache population and subsequent hits.
func TestFetcherCache(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte("cached page"))
	}))
	defer srv.Close()

	store, err := cache.Open(t.TempDir(), cache.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	defer store.Close() //nolint:errcheck // Test cleanup

	f := newTestFetcher(t, WithCache(store, time.Hour))
	ctx := context.Background()

	first := f.Fetch(ctx, model.FetchRequest{URL: srv.URL})
	if first.Outcome != model.OutcomeOK || first.CacheHit {
		t.Fatalf("expected fresh ok fetch, got %+v", first)
	}

	second := f.Fetch(ctx, model.FetchRequest{URL: srv.URL})
	if !second.CacheHit {
		t.Error("expected second fetch to hit the cache")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 network request, got %d", n)
	}

	// Explicit invalidation forces a re-fetch.
	if err := f.Invalidate(ctx, srv.URL); err != nil {
		t.Fatalf("failed to invalidate: %v", err)
	}
	third := f.Fetch(ctx, model.FetchRequest{URL: srv.URL})
	if third.CacheHit {
		t.Error("expected re-fetch after invalidation")
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("expected 2 network requests after invalidation, got %d", n)
	}
}

// TestFetcherRobots tests that disallowed paths are not fetched.
func TestFetcherRobots(t *testing.T) {
	t.Parallel()

	var pageFetched atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	})
	mux.HandleFunc("/private/contacts", func(w http.ResponseWriter, r *http.Request) {
		pageFetched.Store(true)
	})
	mux.HandleFunc("/public", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("public page"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewHTTPClient(5 * time.Second)
	f := newTestFetcher(t, WithRobots(NewRobotsGate(client, "govharvest-test/1.0")))
	ctx := context.Background()

	blocked := f.Fetch(ctx, model.FetchRequest{URL: srv.URL + "/private/contacts"})
	if blocked.Outcome == model.OutcomeOK {
		t.Error("expected robots.txt to block the fetch")
	}
	if pageFetched.Load() {
		t.Error("expected disallowed page never to be requested")
	}

	allowed := f.Fetch(ctx, model.FetchRequest{URL: srv.URL + "/public"})
	if allowed.Outcome != model.OutcomeOK {
		t.Errorf("expected allowed page to fetch, got %s", allowed.Outcome)
	}
}

// TestFetcherCancellation tests prompt shutdown during backoff.
func TestFetcherCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(5 * time.Second)
	strategy := NewStaticStrategy(client, "govharvest-test/1.0", nil)
	f := New(strategy,
		WithLimiter(NewHostLimiter(0)),
		WithRetries(5, time.Hour), // Backoff so long only cancellation can end it
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *model.FetchResult, 1)
	go func() {
		done <- f.Fetch(ctx, model.FetchRequest{URL: srv.URL})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case result := <-done:
		if result.Outcome == model.OutcomeOK {
			t.Errorf("expected failure outcome after cancellation, got %s", result.Outcome)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("fetch did not observe cancellation during backoff")
	}
}

// TestHostLimiterSpacing tests minimum spacing between same-host requests.
func TestHostLimiterSpacing(t *testing.T) {
	t.Parallel()

	limiter := NewHostLimiter(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(ctx, "example.gov"); err != nil {
			t.Fatalf("wait failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("expected >=100ms for 3 requests at 50ms spacing, got %v", elapsed)
	}
}

// TestHostLimiterIndependentHosts tests that one host's backlog does
// not delay another host.
func TestHostLimiterIndependentHosts(t *testing.T) {
	t.Parallel()

	limiter := NewHostLimiter(time.Second)
	ctx := context.Background()

	// Consume slow.example.gov's token.
	if err := limiter.Wait(ctx, "slow.example.gov"); err != nil {
		t.Fatalf("wait failed: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "fast.example.gov"); err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("expected independent host to proceed immediately, waited %v", elapsed)
	}
}

// TestHostLimiterOverride tests per-site delay overrides.
func TestHostLimiterOverride(t *testing.T) {
	t.Parallel()

	limiter := NewHostLimiter(time.Second)
	limiter.SetHostDelay("fast.example.gov", 0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := limiter.Wait(ctx, "fast.example.gov"); err != nil {
			t.Fatalf("wait failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("expected zero-delay override, waited %v", elapsed)
	}
}
