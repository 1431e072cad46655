package cache

import (
	"context"
	"testing"
	"time"

	"github.com/civiccrawl/govharvest/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return store
}

// TestStorePutGet tests the basic round trip and TTL policy.
func TestStorePutGet(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	result := &model.FetchResult{
		URL:         "https://example.gov/contact",
		Outcome:     model.OutcomeOK,
		StatusCode:  200,
		ContentType: "text/html",
		Body:        []byte("<html>info@example.gov</html>"),
		Attempts:    1,
		FetchedAt:   time.Now(),
	}

	if err := store.Put(ctx, result); err != nil {
		t.Fatalf("failed to put: %v", err)
	}

	got, hit, err := store.Get(ctx, result.URL, time.Hour)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if !got.CacheHit {
		t.Error("expected CacheHit flag set on cached result")
	}
	if got.StatusCode != 200 || string(got.Body) != string(result.Body) {
		t.Errorf("cached result mismatch: %+v", got)
	}

	t.Run("unknown URL misses", func(t *testing.T) {
		_, hit, err := store.Get(ctx, "https://example.gov/missing", time.Hour)
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if hit {
			t.Error("expected miss for unknown URL")
		}
	})

	t.Run("zero TTL disables reuse", func(t *testing.T) {
		_, hit, err := store.Get(ctx, result.URL, 0)
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if hit {
			t.Error("expected miss with zero TTL")
		}
	})
}

// TestStoreStaleEntryMisses tests that entries older than the TTL are
// treated as misses.
func TestStoreStaleEntryMisses(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	result := &model.FetchResult{
		URL:       "https://example.gov/old",
		Outcome:   model.OutcomeOK,
		FetchedAt: time.Now().Add(-48 * time.Hour),
	}
	if err := store.Put(ctx, result); err != nil {
		t.Fatalf("failed to put: %v", err)
	}

	_, hit, err := store.Get(ctx, result.URL, 24*time.Hour)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if hit {
		t.Error("expected stale entry to miss")
	}
}

// TestStoreFailuresNotCached tests that failed fetches are never stored.
func TestStoreFailuresNotCached(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	result := &model.FetchResult{
		URL:       "https://example.gov/broken",
		Outcome:   model.OutcomeTimeout,
		FetchedAt: time.Now(),
	}
	if err := store.Put(ctx, result); err != nil {
		t.Fatalf("failed to put: %v", err)
	}

	_, hit, err := store.Get(ctx, result.URL, time.Hour)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if hit {
		t.Error("expected failure outcome not to be cached")
	}
}

// TestStoreReplaceWholesale tests that a refresh replaces the entry.
func TestStoreReplaceWholesale(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	first := &model.FetchResult{
		URL: "https://example.gov", Outcome: model.OutcomeOK,
		StatusCode: 200, Body: []byte("old"), FetchedAt: time.Now().Add(-time.Minute),
	}
	second := &model.FetchResult{
		URL: "https://example.gov", Outcome: model.OutcomeOK,
		StatusCode: 200, Body: []byte("new"), FetchedAt: time.Now(),
	}

	if err := store.Put(ctx, first); err != nil {
		t.Fatalf("failed to put: %v", err)
	}
	if err := store.Put(ctx, second); err != nil {
		t.Fatalf("failed to put replacement: %v", err)
	}

	got, hit, err := store.Get(ctx, "https://example.gov", time.Hour)
	if err != nil || !hit {
		t.Fatalf("expected hit, got hit=%v err=%v", hit, err)
	}
	if string(got.Body) != "new" {
		t.Errorf("expected replaced body, got %q", got.Body)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 entry after replace, got %d", n)
	}
}

// TestStoreInvalidate tests explicit invalidation.
func TestStoreInvalidate(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	result := &model.FetchResult{
		URL: "https://example.gov/contact", Outcome: model.OutcomeOK, FetchedAt: time.Now(),
	}
	if err := store.Put(ctx, result); err != nil {
		t.Fatalf("failed to put: %v", err)
	}
	if err := store.Invalidate(ctx, result.URL); err != nil {
		t.Fatalf("failed to invalidate: %v", err)
	}

	_, hit, err := store.Get(ctx, result.URL, time.Hour)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if hit {
		t.Error("expected miss after invalidation")
	}
}

// TestStorePrune tests age-based cleanup.
func TestStorePrune(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	old := &model.FetchResult{
		URL: "https://example.gov/old", Outcome: model.OutcomeOK,
		FetchedAt: time.Now().Add(-72 * time.Hour),
	}
	fresh := &model.FetchResult{
		URL: "https://example.gov/fresh", Outcome: model.OutcomeOK,
		FetchedAt: time.Now(),
	}
	if err := store.Put(ctx, old); err != nil {
		t.Fatalf("failed to put: %v", err)
	}
	if err := store.Put(ctx, fresh); err != nil {
		t.Fatalf("failed to put: %v", err)
	}

	removed, err := store.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("failed to prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 pruned entry, got %d", removed)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 remaining entry, got %d", n)
	}
}
