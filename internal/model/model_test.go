package model

import "testing"

// TestContactRecordSources tests source-set union behavior.
func TestContactRecordSources(t *testing.T) {
	t.Parallel()

	rec := ContactRecord{
		Value:   "info@example.gov",
		Kind:    KindEmail,
		Sources: []string{"https://example.gov/"},
	}

	rec.AddSource("https://example.gov/contact")
	if len(rec.Sources) != 2 {
		t.Errorf("expected 2 sources, got %d", len(rec.Sources))
	}

	// Adding an existing source is a no-op.
	rec.AddSource("https://example.gov/")
	if len(rec.Sources) != 2 {
		t.Errorf("expected duplicate source to be ignored, got %d sources", len(rec.Sources))
	}

	// Empty source is ignored.
	rec.AddSource("")
	if len(rec.Sources) != 2 {
		t.Errorf("expected empty source to be ignored, got %d sources", len(rec.Sources))
	}
}

// TestJurisdictionLevelValid tests level validation.
func TestJurisdictionLevelValid(t *testing.T) {
	t.Parallel()

	valid := []JurisdictionLevel{
		LevelFederal, LevelState, LevelCounty, LevelCity, LevelAgency, LevelUnknown,
	}
	for _, l := range valid {
		if !l.Valid() {
			t.Errorf("expected %q to be valid", l)
		}
	}

	if JurisdictionLevel("galactic").Valid() {
		t.Error("expected unrecognized level to be invalid")
	}
}

// TestCrawlStatsRecordOutcome tests that outcomes land in the right counters.
func TestCrawlStatsRecordOutcome(t *testing.T) {
	t.Parallel()

	var stats CrawlStats
	stats.RecordOutcome(OutcomeOK)
	stats.RecordOutcome(OutcomeOK)
	stats.RecordOutcome(OutcomeTimeout)
	stats.RecordOutcome(OutcomeBudgetExceeded)

	if stats.PagesVisited != 2 {
		t.Errorf("expected 2 visited, got %d", stats.PagesVisited)
	}
	if stats.PagesFailed != 1 {
		t.Errorf("expected 1 failed, got %d", stats.PagesFailed)
	}
	if stats.PagesPruned != 1 {
		t.Errorf("expected 1 pruned, got %d", stats.PagesPruned)
	}
	if stats.ByOutcome[OutcomeTimeout] != 1 {
		t.Errorf("expected timeout count 1, got %d", stats.ByOutcome[OutcomeTimeout])
	}
}

// TestCrawlReportAddSite tests per-domain dedup and level upgrades.
func TestCrawlReportAddSite(t *testing.T) {
	t.Parallel()

	report := NewCrawlReport([]string{"https://example.gov/"})

	report.AddSite(DiscoveredSite{Domain: "sub.example.gov", Level: LevelUnknown, SourceURL: "https://example.gov/"})
	report.AddSite(DiscoveredSite{Domain: "sub.example.gov", Level: LevelFederal})
	report.AddSite(DiscoveredSite{Domain: "other.state.tx.us", Level: LevelState})

	if len(report.Sites) != 2 {
		t.Fatalf("expected 2 sites, got %d", len(report.Sites))
	}
	if report.Sites[0].Level != LevelFederal {
		t.Errorf("expected unknown level to be upgraded to federal, got %q", report.Sites[0].Level)
	}
	if report.Sites[0].SourceURL != "https://example.gov/" {
		t.Errorf("expected original source URL to be kept, got %q", report.Sites[0].SourceURL)
	}
}

// TestCrawlReportAddFailure tests the per-category sample cap.
func TestCrawlReportAddFailure(t *testing.T) {
	t.Parallel()

	report := NewCrawlReport(nil)
	for i := 0; i < MaxFailureSamples+5; i++ {
		report.AddFailure("https://example.gov/broken", OutcomeTimeout, "deadline exceeded")
	}

	if len(report.Failures) != MaxFailureSamples {
		t.Errorf("expected %d samples, got %d", MaxFailureSamples, len(report.Failures))
	}

	// A different category gets its own budget.
	report.AddFailure("https://example.gov/gone", OutcomeHTTPError, "404")
	if len(report.Failures) != MaxFailureSamples+1 {
		t.Errorf("expected a separate budget per category, got %d samples", len(report.Failures))
	}
}
