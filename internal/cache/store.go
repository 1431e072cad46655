package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/civiccrawl/govharvest/internal/model"
)

// Store persists fetch results in a SQLite database.
//
// Design decision: We use a single database file for all crawled hosts
// rather than one file per site. This keeps cross-run lookups to one
// connection and makes backup/cleanup a single-file operation.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a cache store at the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an
// error is returned; an unreachable cache is a fatal configuration
// error, not a per-page failure.
func Open(dir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dir, "govharvest.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("cache database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check cache path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to refuse creating new files and
	// mode=rwc to allow creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite only supports one writer; a single pooled connection
	// avoids SQLITE_BUSY under concurrent workers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// createTables creates the schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Response snapshots keyed by normalized URL
	CREATE TABLE IF NOT EXISTS responses (
		url TEXT PRIMARY KEY,
		outcome TEXT NOT NULL,
		status_code INTEGER,
		content_type TEXT,
		body BLOB,
		attempts INTEGER DEFAULT 0,
		fetched_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_responses_fetched_at ON responses(fetched_at);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Put stores a fetch result, replacing any existing entry wholesale.
// Only successful fetches are cached; failures must be retried on the
// next run rather than replayed from disk.
func (s *Store) Put(ctx context.Context, result *model.FetchResult) error {
	if !result.Outcome.Success() {
		return nil
	}

	query := `
	INSERT INTO responses (url, outcome, status_code, content_type, body, attempts, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		outcome = excluded.outcome,
		status_code = excluded.status_code,
		content_type = excluded.content_type,
		body = excluded.body,
		attempts = excluded.attempts,
		fetched_at = excluded.fetched_at
	`

	_, err := s.db.ExecContext(ctx, query,
		result.URL, string(result.Outcome), result.StatusCode,
		result.ContentType, result.Body, result.Attempts,
		result.FetchedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store response for %s: %w", result.URL, err)
	}
	return nil
}

// Get looks up a cached result by normalized URL. Entries older than
// ttl are treated as misses; a ttl of zero disables cross-run reuse
// entirely. The returned result has CacheHit set.
func (s *Store) Get(ctx context.Context, url string, ttl time.Duration) (*model.FetchResult, bool, error) {
	if ttl <= 0 {
		return nil, false, nil
	}

	query := `
	SELECT outcome, status_code, content_type, body, attempts, fetched_at
	FROM responses WHERE url = ?
	`

	var (
		outcome     string
		statusCode  int
		contentType sql.NullString
		body        []byte
		attempts    int
		fetchedAt   time.Time
	)
	err := s.db.QueryRowContext(ctx, query, url).Scan(
		&outcome, &statusCode, &contentType, &body, &attempts, &fetchedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up cached response for %s: %w", url, err)
	}

	if time.Since(fetchedAt) > ttl {
		return nil, false, nil
	}

	return &model.FetchResult{
		URL:         url,
		Outcome:     model.Outcome(outcome),
		StatusCode:  statusCode,
		ContentType: contentType.String,
		Body:        body,
		Attempts:    attempts,
		FetchedAt:   fetchedAt,
		CacheHit:    true,
	}, true, nil
}

// Invalidate removes the cached entry for a URL, forcing a re-fetch on
// the next lookup.
func (s *Store) Invalidate(ctx context.Context, url string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM responses WHERE url = ?", url); err != nil {
		return fmt.Errorf("failed to invalidate cache for %s: %w", url, err)
	}
	return nil
}

// Prune deletes entries older than the given age and returns the number
// removed. Useful as periodic maintenance between runs.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UTC()
	res, err := s.db.ExecContext(ctx, "DELETE FROM responses WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of cached entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM responses").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return n, nil
}
