package model

import "time"

// MaxFailureSamples bounds the number of per-category failure examples
// kept in the report. Counts are always complete; samples are capped so
// a run against thousands of broken sites stays small.
const MaxFailureSamples = 10

// CrawlStats aggregates per-outcome counters for one run.
type CrawlStats struct {
	// PagesVisited is the number of pages successfully fetched and
	// processed, including cache hits.
	PagesVisited int `json:"pages_visited"`

	// PagesFailed is the number of pages whose fetch ended in a
	// non-ok, non-budget outcome.
	PagesFailed int `json:"pages_failed"`

	// PagesPruned is the number of queued URLs the frontier dropped
	// because a budget (depth, pages, elapsed time) was reached.
	PagesPruned int `json:"pages_pruned"`

	// CacheHits is the number of fetches served from the cache store.
	CacheHits int `json:"cache_hits"`

	// Retries is the total number of retry attempts across all fetches.
	Retries int `json:"retries"`

	// ParseErrors counts pages fetched but skipped for extraction
	// because their content could not be parsed.
	ParseErrors int `json:"parse_errors"`

	// ByOutcome breaks down completed fetches by outcome tag.
	ByOutcome map[Outcome]int `json:"by_outcome"`
}

// RecordOutcome increments the counter for an outcome.
func (s *CrawlStats) RecordOutcome(o Outcome) {
	if s.ByOutcome == nil {
		s.ByOutcome = make(map[Outcome]int)
	}
	s.ByOutcome[o]++
	switch {
	case o == OutcomeOK:
		s.PagesVisited++
	case o == OutcomeBudgetExceeded:
		s.PagesPruned++
	default:
		s.PagesFailed++
	}
}

// FailureSample is one example of a failed page, kept so partial
// success is distinguishable from total failure in the final report.
type FailureSample struct {
	// URL is the page that failed.
	URL string `json:"url"`

	// Outcome is the failure category.
	Outcome Outcome `json:"outcome"`

	// Error is the underlying error text, if any.
	Error string `json:"error,omitempty"`
}

// CrawlReport bundles everything one crawl run produced: the final
// contact records, the discovered government sites, and run statistics.
//
// Design decision: The report is a plain accumulating struct rather than
// a set of channels because:
//  1. The coordinator serializes all writes, so no internal locking
//  2. Report writers need the complete result anyway
//  3. A cancelled run can return the struct as-is, best-effort
type CrawlReport struct {
	// Seeds are the normalized seed URLs the run started from.
	Seeds []string `json:"seeds"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total run duration.
	Elapsed time.Duration `json:"elapsed"`

	// Contacts is the deduplicated contact record set.
	Contacts []ContactRecord `json:"contacts"`

	// Sites is the set of discovered government sites, one entry per
	// domain.
	Sites []DiscoveredSite `json:"sites"`

	// Stats aggregates per-outcome counters.
	Stats CrawlStats `json:"stats"`

	// Failures holds up to MaxFailureSamples examples per category.
	Failures []FailureSample `json:"failures,omitempty"`

	// Cancelled is true when the run was stopped mid-flight and the
	// report reflects best-effort accumulated results.
	Cancelled bool `json:"cancelled,omitempty"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`
}

// NewCrawlReport creates a report for the given seed URLs.
func NewCrawlReport(seeds []string) *CrawlReport {
	return &CrawlReport{
		Seeds:     seeds,
		StartedAt: time.Now(),
		Contacts:  make([]ContactRecord, 0),
		Sites:     make([]DiscoveredSite, 0),
	}
}

// AddFailure records a failure sample, respecting the per-category cap.
func (r *CrawlReport) AddFailure(url string, outcome Outcome, errText string) {
	count := 0
	for _, f := range r.Failures {
		if f.Outcome == outcome {
			count++
		}
	}
	if count >= MaxFailureSamples {
		return
	}
	r.Failures = append(r.Failures, FailureSample{URL: url, Outcome: outcome, Error: errText})
}

// AddSite records a discovered site, keeping one entry per domain.
// A classified level always wins over an earlier unknown entry.
func (r *CrawlReport) AddSite(site DiscoveredSite) {
	for i, existing := range r.Sites {
		if existing.Domain == site.Domain {
			if existing.Level == LevelUnknown && site.Level != LevelUnknown {
				site.SourceURL = existing.SourceURL
				r.Sites[i] = site
			}
			return
		}
	}
	r.Sites = append(r.Sites, site)
}
