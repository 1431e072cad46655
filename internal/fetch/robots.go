package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// maxRobotsSize caps robots.txt downloads. Real files are tiny; the
// cap guards against misconfigured servers returning full pages.
const maxRobotsSize = 512 * 1024

// RobotsGate checks robots.txt before pages are fetched. Each host's
// robots.txt is fetched once and the parsed rules are cached for the
// run. Hosts whose robots.txt cannot be retrieved are treated as
// allowing everything, matching common crawler practice.
type RobotsGate struct {
	// client issues the robots.txt requests.
	client *http.Client

	// userAgent is matched against robots.txt user-agent groups.
	userAgent string

	mu    sync.Mutex
	hosts map[string]*robotstxt.RobotsData
}

// NewRobotsGate creates a gate using the given client and user agent.
func NewRobotsGate(client *http.Client, userAgent string) *RobotsGate {
	return &RobotsGate{
		client:    client,
		userAgent: userAgent,
		hosts:     make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether the URL may be fetched under the host's
// robots.txt rules.
func (g *RobotsGate) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}

	data := g.rulesFor(ctx, u)
	if data == nil {
		return true
	}
	return data.TestAgent(u.Path, g.userAgent)
}

// rulesFor returns the cached rules for a host, fetching them on first use.
func (g *RobotsGate) rulesFor(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	host := u.Host

	g.mu.Lock()
	data, ok := g.hosts[host]
	g.mu.Unlock()
	if ok {
		return data
	}

	data = g.fetchRules(ctx, u)

	g.mu.Lock()
	g.hosts[host] = data
	g.mu.Unlock()
	return data
}

// fetchRules downloads and parses robots.txt for the URL's host.
// Returns nil (allow all) when the file is missing or unreachable.
func (g *RobotsGate) fetchRules(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close() //nolint:errcheck // Best-effort close on read path

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsSize))
	if err != nil {
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil
	}
	return data
}
