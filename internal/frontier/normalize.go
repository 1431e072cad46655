package frontier

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize canonicalizes a URL so equivalent representations compare
// equal. It lowercases the scheme and host, removes the fragment,
// strips default ports, and strips the trailing slash, so
// "http://Example.gov/" and "http://example.gov" normalize identically.
//
// Normalization is idempotent: Normalize(Normalize(u)) == Normalize(u).
// Every URL passes through here before any set-membership or map-key
// use in the crawl engine.
func Normalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q in URL %q", u.Scheme, raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in URL %q", raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	// Strip default ports so example.gov:443 and example.gov match.
	host, port, ok := strings.Cut(u.Host, ":")
	if ok {
		if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
			u.Host = host
		}
	}

	// Strip the trailing slash, including the bare root path.
	u.Path = strings.TrimRight(u.Path, "/")

	return u.String(), nil
}

// Host returns the lowercased host of a URL, without the port.
// Returns empty string for unparseable URLs.
func Host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
