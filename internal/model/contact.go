package model

// ContactKind identifies the type of a contact value.
type ContactKind string

// Contact kinds recognized by the extractor and deduplicator.
const (
	// KindEmail is an email address.
	KindEmail ContactKind = "email"

	// KindPhone is a telephone number.
	KindPhone ContactKind = "phone"

	// KindAddress is a postal street address.
	KindAddress ContactKind = "address"
)

// Confidence expresses how reliable an extraction-time match is.
//
// Design decision: We use a two-level scale rather than a numeric score
// because:
//  1. The extractor's checks are deterministic, not probabilistic
//  2. Downstream consumers only ever branch on "trust it or review it"
//  3. A float would imply precision the heuristics don't have
type Confidence int

const (
	// ConfidenceHigh means the value passed strict syntax validation
	// (e.g., a directly matched, well-formed email address).
	ConfidenceHigh Confidence = iota

	// ConfidenceLow means the value came from a heuristic match such as
	// an address pattern or a deobfuscated email, and may need review.
	ConfidenceLow
)

// String returns the human-readable confidence label.
func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceLow:
		return "low"
	default:
		return "unknown"
	}
}

// ContactCandidate is a single raw contact value extracted from one page.
// Candidates are immutable once created; the deduplicator replaces
// superseded candidates rather than editing them.
type ContactCandidate struct {
	// Value is the extracted contact value after extraction-time
	// normalization (e.g., a deobfuscated email).
	Value string `json:"value"`

	// Kind is the contact type.
	Kind ContactKind `json:"kind"`

	// SourceURL is the page the value was extracted from.
	SourceURL string `json:"source_url"`

	// Confidence reflects the strength of the extraction-time checks.
	Confidence Confidence `json:"confidence"`
}

// ContactRecord is the canonical, deduplicated representation of one
// real-world contact value. Records are created and owned exclusively by
// the deduplicator; this is the only contact entity exposed outside the
// crawl engine.
type ContactRecord struct {
	// Value is the canonical contact value (lowercased email,
	// digits-only phone, whitespace-normalized address).
	Value string `json:"value"`

	// Kind is fixed at creation; merging never changes it.
	Kind ContactKind `json:"kind"`

	// Sources is the set of page URLs that yielded this value.
	// Always non-empty.
	Sources []string `json:"sources"`

	// Site is the registrable domain the record is associated with,
	// when one can be inferred from the sources.
	Site string `json:"site,omitempty"`

	// Confidence is the highest confidence among merged candidates.
	Confidence Confidence `json:"confidence"`

	// Flagged marks records that failed the final plausibility check
	// (placeholder email domains, repeated-digit phones). Flagged
	// records stay in the report so consumers can decide to drop them.
	Flagged bool `json:"flagged,omitempty"`

	// FlagReason explains why the record was flagged.
	FlagReason string `json:"flag_reason,omitempty"`
}

// HasSource reports whether the record already cites the given URL.
func (r *ContactRecord) HasSource(url string) bool {
	for _, s := range r.Sources {
		if s == url {
			return true
		}
	}
	return false
}

// AddSource unions a source URL into the record's source set.
func (r *ContactRecord) AddSource(url string) {
	if url == "" || r.HasSource(url) {
		return
	}
	r.Sources = append(r.Sources, url)
}
