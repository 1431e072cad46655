package pipeline

import (
	"context"
	"fmt"

	"github.com/civiccrawl/govharvest/internal/crawl"
	"github.com/civiccrawl/govharvest/internal/dedupe"
	"github.com/civiccrawl/govharvest/internal/model"
)

// CrawlStep runs the crawl coordinator over the configured seeds and
// loads the outcome into the shared report.
type CrawlStep struct {
	coordinator *crawl.Coordinator
	seeds       []string
}

// NewCrawlStep creates the crawl step.
func NewCrawlStep(coordinator *crawl.Coordinator, seeds []string) *CrawlStep {
	return &CrawlStep{coordinator: coordinator, seeds: seeds}
}

// Name returns the step name.
func (s *CrawlStep) Name() string { return "crawl" }

// Do runs the crawl and replaces the report's crawl-derived fields.
// Step bookkeeping accumulated so far is preserved.
func (s *CrawlStep) Do(ctx context.Context, report *model.CrawlReport) error {
	result, err := s.coordinator.Run(ctx, s.seeds)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	performed := report.PerformedSteps
	*report = *result
	report.PerformedSteps = performed
	return nil
}

// DeduplicateStep re-merges the report's contact records, collapsing
// duplicates across merged reports and recomputing plausibility flags.
// Running it twice is a no-op.
type DeduplicateStep struct{}

// NewDeduplicateStep creates the deduplication step.
func NewDeduplicateStep() *DeduplicateStep {
	return &DeduplicateStep{}
}

// Name returns the step name.
func (s *DeduplicateStep) Name() string { return "deduplicate" }

// Do canonicalizes and re-merges the report's contacts.
func (s *DeduplicateStep) Do(_ context.Context, report *model.CrawlReport) error {
	merger := dedupe.NewMerger()
	for _, record := range report.Contacts {
		for _, source := range record.Sources {
			merger.Add(model.ContactCandidate{
				Value:      record.Value,
				Kind:       record.Kind,
				SourceURL:  source,
				Confidence: record.Confidence,
			})
		}
	}
	report.Contacts = merger.Records()
	return nil
}
