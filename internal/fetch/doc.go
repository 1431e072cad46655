// Package fetch retrieves pages for the crawl engine.
//
// # Behavior
//
// Every fetch is cache-checked first, then rate limited per target
// host, then attempted with bounded retries. Transient failures
// (timeouts, connection resets, 5xx, 429) back off exponentially with
// jitter; other 4xx responses are terminal. Ordinary network and HTTP
// failures come back as outcome-tagged results, never as Go errors.
//
// # Strategies
//
// Retrieval itself is pluggable behind the Strategy interface. The
// static HTTP strategy is the default; a headless-browser strategy
// (chromedp) can be enabled for pages whose static HTML carries no
// usable text. Strategy selection is a deterministic content rule, not
// free-form dispatch.
//
// # Politeness
//
// Rate limiting is per host, never global, so one slow municipal
// server cannot starve progress on every other site. robots.txt is
// honored by default.
package fetch
