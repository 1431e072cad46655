package fetch

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/civiccrawl/govharvest/internal/model"
)

// Strategy performs one retrieval attempt for a URL. Implementations
// do not retry or rate limit; the Fetcher owns that policy.
type Strategy interface {
	// Name identifies the strategy for logging.
	Name() string

	// Do performs a single attempt and returns the raw result.
	// Network-level failures are returned as errors for the Fetcher to
	// classify; HTTP error statuses are returned in the result.
	Do(ctx context.Context, url string) (*model.FetchResult, error)
}

// StaticStrategy fetches pages with a plain HTTP client. This is the
// default strategy and handles the overwhelming majority of government
// sites, which serve server-rendered HTML.
type StaticStrategy struct {
	client       *http.Client
	userAgent    string
	extraHeaders map[string]string
	hostHeaders  map[string]map[string]string
	maxBodySize  int64
}

// NewStaticStrategy creates the static HTTP strategy.
func NewStaticStrategy(client *http.Client, userAgent string, headers map[string]string) *StaticStrategy {
	return &StaticStrategy{
		client:       client,
		userAgent:    userAgent,
		extraHeaders: headers,
		hostHeaders:  make(map[string]map[string]string),
		maxBodySize:  model.MaxBodySize,
	}
}

// SetHostHeaders registers extra request headers for one host. They are
// applied on top of the shared headers for every request to that host.
// Must be called before fetching starts; the map is read without locking
// once workers are running.
func (s *StaticStrategy) SetHostHeaders(host string, headers map[string]string) {
	if len(headers) == 0 {
		return
	}
	s.hostHeaders[strings.ToLower(host)] = headers
}

// Name returns the strategy name.
func (s *StaticStrategy) Name() string { return "static-http" }

// Do performs a single HTTP GET.
func (s *StaticStrategy) Do(ctx context.Context, url string) (*model.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/pdf;q=0.8,*/*;q=0.7")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for k, v := range s.extraHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range s.hostHeaders[strings.ToLower(req.URL.Hostname())] {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	body, err := s.readBody(resp)
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	result := &model.FetchResult{
		URL:         url,
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: contentType,
		FetchedAt:   time.Now(),
	}
	result.TruncateBody()
	return result, nil
}

// readBody reads the response body, decoding the declared
// Content-Encoding. We set Accept-Encoding ourselves, which disables
// the transport's automatic gzip handling, so decoding is ours to do.
func (s *StaticStrategy) readBody(resp *http.Response) ([]byte, error) {
	if resp == nil || resp.Body == nil {
		return nil, errors.New("empty response body")
	}
	defer resp.Body.Close() //nolint:errcheck // Best-effort close on read path

	reader := io.Reader(resp.Body)
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	switch encoding {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close() //nolint:errcheck // Best-effort close on read path
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fr := flate.NewReader(resp.Body)
		defer fr.Close() //nolint:errcheck // Best-effort close on read path
		reader = fr
	}

	body, err := io.ReadAll(io.LimitReader(reader, s.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
