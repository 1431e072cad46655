package model

// JurisdictionLevel is the government tier a discovered site is
// classified under.
type JurisdictionLevel string

// Jurisdiction levels, ordered from broadest to most local.
const (
	// LevelFederal is a federal agency or department site.
	LevelFederal JurisdictionLevel = "federal"

	// LevelState is a state government site.
	LevelState JurisdictionLevel = "state"

	// LevelCounty is a county or parish government site.
	LevelCounty JurisdictionLevel = "county"

	// LevelCity is a city, town, or municipal government site.
	LevelCity JurisdictionLevel = "city"

	// LevelAgency is a recognizable agency site whose tier cannot be
	// narrowed further (e.g., an independent commission).
	LevelAgency JurisdictionLevel = "agency"

	// LevelUnknown marks in-scope government domains the rule cascade
	// could not classify. Unknown sites are kept and crawled rather
	// than dropped.
	LevelUnknown JurisdictionLevel = "unknown"
)

// Valid reports whether the level is one of the recognized values.
func (l JurisdictionLevel) Valid() bool {
	switch l {
	case LevelFederal, LevelState, LevelCounty, LevelCity, LevelAgency, LevelUnknown:
		return true
	}
	return false
}

// DiscoveredSite is a government site found during link discovery.
// Created by the link discoverer; consumed by the frontier (to decide
// whether to enqueue) and by the final report.
type DiscoveredSite struct {
	// Domain is the site's host, lowercased.
	Domain string `json:"domain"`

	// Level is the inferred jurisdiction level.
	Level JurisdictionLevel `json:"level"`

	// Name is a human-readable site name when one could be inferred
	// (from the seed list or the referring page).
	Name string `json:"name,omitempty"`

	// StateCode is the two-letter state code when known.
	StateCode string `json:"state_code,omitempty"`

	// SourceURL is the page that referenced this site.
	SourceURL string `json:"source_url,omitempty"`
}
