package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/civiccrawl/govharvest/internal/model"
)

// SeedEntry is one row of the authoritative seed list CSV.
// The file carries known government domains with their jurisdiction
// level, so the discoverer can trust and classify them without relying
// on suffix heuristics alone.
type SeedEntry struct {
	// Domain is the site's host, e.g. "www.example.gov".
	Domain string `csv:"domain"`

	// Level is the jurisdiction level: federal, state, county, city,
	// agency, or unknown.
	Level string `csv:"level"`

	// Name is the human-readable agency or site name.
	Name string `csv:"name"`

	// StateCode is the two-letter state code, empty for federal sites.
	StateCode string `csv:"state_code"`
}

// URL returns the crawlable URL for the seed entry.
func (e SeedEntry) URL() string {
	domain := strings.TrimSpace(strings.ToLower(e.Domain))
	if strings.Contains(domain, "://") {
		return domain
	}
	return "https://" + domain + "/"
}

// JurisdictionLevel returns the entry's level as a model type,
// falling back to unknown for unrecognized values.
func (e SeedEntry) JurisdictionLevel() model.JurisdictionLevel {
	level := model.JurisdictionLevel(strings.TrimSpace(strings.ToLower(e.Level)))
	if !level.Valid() {
		return model.LevelUnknown
	}
	return level
}

// LoadSeedList reads the authoritative seed list from a CSV file.
// Rows without a domain are skipped rather than treated as errors,
// since hand-maintained lists often carry blank lines.
func LoadSeedList(path string) ([]SeedEntry, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided seed list path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open seed list: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	var entries []SeedEntry
	if err := gocsv.UnmarshalFile(f, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse seed list: %w", err)
	}

	valid := make([]SeedEntry, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Domain) == "" {
			continue
		}
		valid = append(valid, e)
	}

	return valid, nil
}
