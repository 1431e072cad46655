// Package discover extracts outbound links from fetched pages, filters
// them to in-scope government domains, and classifies each discovered
// site by jurisdiction level.
//
// Discovery is scope-limited by policy, not by reachability: a link is
// kept only when it stays on the page's own registrable domain, carries
// a recognized government suffix (.gov, .mil, or a state/municipal .us
// pattern), or appears in the authoritative seed list. Everything else
// is dropped before it can reach the crawl frontier.
package discover
