package discover

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/civiccrawl/govharvest/internal/frontier"
	"github.com/civiccrawl/govharvest/internal/model"
)

// Link is an in-scope outbound link ready for the frontier.
type Link struct {
	// URL is the absolute, normalized link target.
	URL string

	// Priority marks links whose path or anchor text suggests contact
	// information.
	Priority bool
}

// Result holds everything one page contributed to discovery.
type Result struct {
	// Links are the page's in-scope outbound links, in document order.
	Links []Link

	// Sites are government hosts seen for the first time on this page,
	// one entry per host.
	Sites []model.DiscoveredSite
}

// Discoverer parses fetched HTML and reports in-scope links and newly
// discovered government sites.
//
// Design decision: We walk the DOM with golang.org/x/net/html rather
// than matching hrefs by regex because:
//  1. It correctly handles malformed HTML common on government sites
//  2. Anchor text is needed for link prioritization, and pairing text
//     with its href is trivial on a tree and fragile in a regex
//  3. Resolution against <base href> falls out of proper parsing
type Discoverer struct {
	classifier *Classifier
}

// New creates a Discoverer using the given classifier for scope and
// jurisdiction decisions.
func New(classifier *Classifier) *Discoverer {
	return &Discoverer{classifier: classifier}
}

// Discover parses a page body and returns its in-scope links and the
// government sites it references. Links already pointing at the page's
// own host are returned as links but never as discovered sites.
func (d *Discoverer) Discover(pageURL string, body []byte) (*Result, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page URL %q: %w", pageURL, err)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %q: %w", pageURL, err)
	}

	result := &Result{
		Links: make([]Link, 0),
		Sites: make([]model.DiscoveredSite, 0),
	}
	pageHost := strings.ToLower(base.Hostname())
	pageDomain := registrableDomain(pageHost)
	seenLinks := make(map[string]bool)
	seenHosts := map[string]bool{pageHost: true}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := getAttr(n, "href"); href != "" {
				d.collect(base, pageDomain, href, anchorText(n), pageURL, result, seenLinks, seenHosts)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return result, nil
}

// collect resolves one href and records it when it passes the scope
// policy: same registrable domain as the page, or allow-listed by the
// classifier.
func (d *Discoverer) collect(base *url.URL, pageDomain, href, text, pageURL string,
	result *Result, seenLinks, seenHosts map[string]bool,
) {
	resolved := resolveURL(base, href)
	if resolved == "" {
		return
	}
	normalized, err := frontier.Normalize(resolved)
	if err != nil {
		return
	}

	host := frontier.Host(normalized)
	sameSite := host == strings.ToLower(base.Hostname()) ||
		(pageDomain != "" && registrableDomain(host) == pageDomain)
	if !sameSite && !d.classifier.InScope(host) {
		return
	}

	if !seenLinks[normalized] {
		seenLinks[normalized] = true
		result.Links = append(result.Links, Link{
			URL:      normalized,
			Priority: PriorityLink(normalized, text),
		})
	}

	if !seenHosts[host] {
		seenHosts[host] = true
		result.Sites = append(result.Sites, d.classifier.Site(host, pageURL))
	}
}

// resolveURL resolves an href against the page URL, dropping schemes
// and pseudo-links a crawler cannot follow.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// anchorText collects the visible text inside an anchor element.
func anchorText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
			b.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
