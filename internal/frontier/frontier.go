package frontier

import (
	"strings"
	"sync"
	"time"

	"github.com/civiccrawl/govharvest/internal/model"
)

// urlState tracks where one URL is in its lifecycle.
type urlState int

const (
	// stateQueued means the URL is waiting to be claimed.
	stateQueued urlState = iota

	// stateInFlight means a worker has claimed the URL.
	stateInFlight

	// stateVisitedOK means the fetch completed successfully.
	stateVisitedOK

	// stateVisitedFailed means the fetch completed with a failure.
	stateVisitedFailed

	// statePruned means a budget removed the URL before fetching.
	statePruned
)

// entry is one queued URL with its discovery metadata.
type entry struct {
	url      string
	depth    int
	referrer string
}

// level holds the queued URLs for one crawl depth. Priority URLs
// (contact-looking pages) are claimed before the rest of the level.
type level struct {
	priority []entry
	normal   []entry
}

func (l *level) empty() bool {
	return len(l.priority) == 0 && len(l.normal) == 0
}

// Frontier is the breadth-first crawl scheduler for one run. It owns
// the visited-set, the per-depth queues, and the crawl budgets. All
// mutations go through its methods; the internal mutex makes the
// visited-set check and queue insertion atomic relative to concurrent
// discoverers.
type Frontier struct {
	mu sync.Mutex

	// states maps normalized URL to lifecycle state.
	states map[string]urlState

	// levels maps depth to its pending queue.
	levels map[int]*level

	// claimed counts URLs handed to workers, used for the page budget.
	claimed int

	// visited, failed, pruned count terminal transitions.
	visited int
	failed  int
	pruned  int

	maxDepth   int
	maxPages   int
	maxElapsed time.Duration
	started    time.Time

	// hostMaxDepth overrides maxDepth for specific hosts, keyed by
	// lowercased hostname.
	hostMaxDepth map[string]int
}

// Option configures a Frontier.
type Option func(*Frontier)

// WithMaxDepth sets the maximum crawl depth.
// 0 = only the seed pages, 1 = seeds plus linked pages, etc.
func WithMaxDepth(depth int) Option {
	return func(f *Frontier) {
		f.maxDepth = depth
	}
}

// WithHostMaxDepth overrides the maximum crawl depth for one host.
// URLs on other hosts keep the run-level depth.
func WithHostMaxDepth(host string, depth int) Option {
	return func(f *Frontier) {
		f.hostMaxDepth[strings.ToLower(host)] = depth
	}
}

// WithMaxPages sets the total page budget for the run.
func WithMaxPages(maxPages int) Option {
	return func(f *Frontier) {
		f.maxPages = maxPages
	}
}

// WithMaxElapsed sets the wall-clock budget for the run.
// Zero means no time limit.
func WithMaxElapsed(d time.Duration) Option {
	return func(f *Frontier) {
		f.maxElapsed = d
	}
}

// New creates a Frontier with the given options.
func New(opts ...Option) *Frontier {
	f := &Frontier{
		states:       make(map[string]urlState),
		levels:       make(map[int]*level),
		maxDepth:     2,
		maxPages:     500,
		started:      time.Now(),
		hostMaxDepth: make(map[string]int),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Seed enqueues the starting URLs at depth 0. Unparseable seeds are
// skipped and returned so the caller can report them.
func (f *Frontier) Seed(urls []string) (accepted []string, rejected []string) {
	for _, raw := range urls {
		normalized, err := Normalize(raw)
		if err != nil {
			rejected = append(rejected, raw)
			continue
		}
		if f.Enqueue(normalized, 0, "", false) {
			accepted = append(accepted, normalized)
		}
	}
	return accepted, rejected
}

// Enqueue offers a discovered URL to the frontier. The URL must already
// be normalized. Returns true if the URL was newly queued.
//
// The visited-set check and the queue insertion happen under one lock,
// so concurrent discoverers cannot double-enqueue a URL. URLs beyond
// the depth budget transition straight to the pruned state without
// fetching; that is a normal scheduling outcome, not a failure.
func (f *Frontier) Enqueue(normalized string, depth int, referrer string, priority bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, seen := f.states[normalized]; seen {
		return false
	}

	limit := f.maxDepth
	if d, ok := f.hostMaxDepth[Host(normalized)]; ok {
		limit = d
	}
	if depth > limit {
		f.states[normalized] = statePruned
		f.pruned++
		return false
	}

	f.states[normalized] = stateQueued
	lv, ok := f.levels[depth]
	if !ok {
		lv = &level{}
		f.levels[depth] = lv
	}
	e := entry{url: normalized, depth: depth, referrer: referrer}
	if priority {
		lv.priority = append(lv.priority, e)
	} else {
		lv.normal = append(lv.normal, e)
	}
	return true
}

// NextLevel claims the shallowest pending depth level and returns its
// fetch requests, up to the remaining page budget. Workers process the
// returned batch concurrently; the next level is not released until
// every request from this one has completed, which is what guarantees
// breadth-first ordering.
//
// When a budget is exhausted, everything still queued is pruned and nil
// is returned. A nil return with Pending() == 0 means the run is done.
func (f *Frontier) NextLevel() []model.FetchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.budgetExhaustedLocked() {
		f.drainLocked()
		return nil
	}

	depth, lv := f.shallowestLocked()
	if lv == nil {
		return nil
	}

	remaining := f.maxPages - f.claimed
	batch := make([]model.FetchRequest, 0, remaining)

	take := func(entries []entry) []entry {
		for len(entries) > 0 && len(batch) < remaining {
			e := entries[0]
			entries = entries[1:]
			f.states[e.url] = stateInFlight
			f.claimed++
			batch = append(batch, model.FetchRequest{URL: e.url, Depth: e.depth, Referrer: e.referrer})
		}
		return entries
	}

	lv.priority = take(lv.priority)
	lv.normal = take(lv.normal)

	if lv.empty() {
		delete(f.levels, depth)
	}

	return batch
}

// Complete records the terminal outcome for a claimed URL, moving it
// from in-flight to visited.
func (f *Frontier) Complete(normalized string, outcome model.Outcome) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.states[normalized] != stateInFlight {
		return
	}
	if outcome.Success() {
		f.states[normalized] = stateVisitedOK
		f.visited++
	} else {
		f.states[normalized] = stateVisitedFailed
		f.failed++
	}
}

// Seen reports whether a normalized URL is known to the frontier in any
// state.
func (f *Frontier) Seen(normalized string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.states[normalized]
	return ok
}

// Pending returns the number of URLs still queued.
func (f *Frontier) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, lv := range f.levels {
		n += len(lv.priority) + len(lv.normal)
	}
	return n
}

// Counts returns the visited, failed, and pruned totals.
func (f *Frontier) Counts() (visited, failed, pruned int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited, f.failed, f.pruned
}

// budgetExhaustedLocked reports whether a run-level budget is spent.
// Callers must hold f.mu.
func (f *Frontier) budgetExhaustedLocked() bool {
	if f.claimed >= f.maxPages {
		return true
	}
	if f.maxElapsed > 0 && time.Since(f.started) >= f.maxElapsed {
		return true
	}
	return false
}

// drainLocked prunes everything still queued. Callers must hold f.mu.
func (f *Frontier) drainLocked() {
	for depth, lv := range f.levels {
		for _, e := range lv.priority {
			f.states[e.url] = statePruned
			f.pruned++
		}
		for _, e := range lv.normal {
			f.states[e.url] = statePruned
			f.pruned++
		}
		delete(f.levels, depth)
	}
}

// shallowestLocked finds the lowest non-empty depth level.
// Callers must hold f.mu.
func (f *Frontier) shallowestLocked() (int, *level) {
	best := -1
	for depth, lv := range f.levels {
		if lv.empty() {
			continue
		}
		if best == -1 || depth < best {
			best = depth
		}
	}
	if best == -1 {
		return 0, nil
	}
	return best, f.levels[best]
}
