package crawl

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/civiccrawl/govharvest/internal/dedupe"
	"github.com/civiccrawl/govharvest/internal/discover"
	"github.com/civiccrawl/govharvest/internal/extract"
	"github.com/civiccrawl/govharvest/internal/fetch"
	"github.com/civiccrawl/govharvest/internal/frontier"
	"github.com/civiccrawl/govharvest/internal/model"
)

// ErrNoValidSeeds is returned when none of the seed URLs parse as
// crawlable http(s) URLs.
var ErrNoValidSeeds = errors.New("no valid seed URLs")

// Coordinator wires the fetcher, extractor, and discoverer into one
// crawl run over a shared frontier.
//
// Design decision: Workers are synchronized level by level rather than
// running one free-for-all pool because:
//  1. Breadth-first ordering is a hard guarantee, not best effort,
//     so shallow pages win under a tight page budget
//  2. The frontier releases depth n+1 only after depth n completes,
//     which makes the depth budget exact
//  3. An errgroup per level with a concurrency limit is simpler to
//     reason about than condition variables on a shared queue
type Coordinator struct {
	fetcher    *fetch.Fetcher
	extractor  *extract.Extractor
	discoverer *discover.Discoverer

	// frontierOpts configure each run's frontier (depth, page, and
	// elapsed-time budgets).
	frontierOpts []frontier.Option

	// concurrency bounds the worker pool per level.
	concurrency int

	logger *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithConcurrency bounds the number of pages processed in parallel.
func WithConcurrency(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithFrontierOptions sets the budgets applied to each run's frontier.
func WithFrontierOptions(opts ...frontier.Option) Option {
	return func(c *Coordinator) {
		c.frontierOpts = opts
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// New creates a Coordinator.
func New(fetcher *fetch.Fetcher, extractor *extract.Extractor, discoverer *discover.Discoverer, opts ...Option) *Coordinator {
	c := &Coordinator{
		fetcher:     fetcher,
		extractor:   extractor,
		discoverer:  discoverer,
		concurrency: 8,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Run crawls from the given seeds until the frontier is empty or a
// budget is exhausted, and returns the accumulated report. Unparseable
// seeds are logged and skipped; only a run with zero usable seeds is an
// error. A cancelled context stops the run promptly and the report
// comes back marked Cancelled with everything merged so far.
func (c *Coordinator) Run(ctx context.Context, seeds []string) (*model.CrawlReport, error) {
	fr := frontier.New(c.frontierOpts...)
	accepted, rejected := fr.Seed(seeds)
	for _, seed := range rejected {
		c.logger.Warn("skipping unusable seed", "seed", seed)
	}
	if len(accepted) == 0 {
		return nil, ErrNoValidSeeds
	}

	report := model.NewCrawlReport(accepted)
	merger := dedupe.NewMerger()

	// reportMu serializes report mutations; the merger and frontier
	// carry their own locks.
	var reportMu sync.Mutex

	for ctx.Err() == nil {
		batch := fr.NextLevel()
		if len(batch) == 0 {
			break
		}
		c.logger.Debug("claimed crawl level", "depth", batch[0].Depth, "pages", len(batch))

		g := new(errgroup.Group)
		g.SetLimit(c.concurrency)
		for _, req := range batch {
			req := req
			g.Go(func() error {
				c.process(ctx, req, fr, merger, report, &reportMu)
				return nil
			})
		}
		// Workers never return errors; per-page failures are counted
		// in the report instead.
		_ = g.Wait()
	}

	if ctx.Err() != nil {
		report.Cancelled = true
	}

	_, _, pruned := fr.Counts()
	if pruned > 0 {
		if report.Stats.ByOutcome == nil {
			report.Stats.ByOutcome = make(map[model.Outcome]int)
		}
		report.Stats.ByOutcome[model.OutcomeBudgetExceeded] += pruned
		report.Stats.PagesPruned += pruned
	}

	report.Contacts = merger.Records()
	report.Elapsed = time.Since(report.StartedAt)

	c.logger.Info("crawl run finished",
		"visited", report.Stats.PagesVisited,
		"failed", report.Stats.PagesFailed,
		"pruned", report.Stats.PagesPruned,
		"contacts", len(report.Contacts),
		"sites", len(report.Sites),
		"cancelled", report.Cancelled,
	)
	return report, nil
}

// process handles one claimed URL: fetch, account, extract, discover,
// and feed new links back to the frontier.
func (c *Coordinator) process(ctx context.Context, req model.FetchRequest,
	fr *frontier.Frontier, merger *dedupe.Merger,
	report *model.CrawlReport, reportMu *sync.Mutex,
) {
	result := c.fetcher.Fetch(ctx, req)
	fr.Complete(req.URL, result.Outcome)

	reportMu.Lock()
	report.Stats.RecordOutcome(result.Outcome)
	if result.CacheHit {
		report.Stats.CacheHits++
	}
	if result.Attempts > 1 {
		report.Stats.Retries += result.Attempts - 1
	}
	if !result.Outcome.Success() {
		report.AddFailure(req.URL, result.Outcome, result.Error)
	}
	reportMu.Unlock()

	if !result.Outcome.Success() {
		c.logger.Debug("page failed",
			"url", req.URL, "outcome", string(result.Outcome), "error", result.Error)
		return
	}

	if candidates := c.extractor.Extract(req.URL, result); len(candidates) > 0 {
		merger.Add(candidates...)
	}

	if !result.IsHTML() {
		return
	}
	found, err := c.discoverer.Discover(req.URL, result.Body)
	if err != nil {
		c.logger.Debug("page unparsable, skipping discovery", "url", req.URL, "error", err)
		reportMu.Lock()
		report.Stats.ParseErrors++
		reportMu.Unlock()
		return
	}

	reportMu.Lock()
	for _, site := range found.Sites {
		report.AddSite(site)
	}
	reportMu.Unlock()

	for _, link := range found.Links {
		fr.Enqueue(link.URL, req.Depth+1, req.URL, link.Priority)
	}
}
