package dedupe

import (
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"

	"github.com/civiccrawl/govharvest/internal/frontier"
	"github.com/civiccrawl/govharvest/internal/model"
)

// recordKey identifies one canonical contact value. Two candidates of
// the same kind with equal canonical value merge into one record.
type recordKey struct {
	kind  model.ContactKind
	value string
}

// Merger accumulates contact candidates across the whole run and
// merges duplicates incrementally.
//
// Design decision: Merging happens as candidates stream in rather than
// in a batch at the end because:
//  1. Memory stays bounded by distinct values, not total matches
//  2. A cancelled run still has its merged records on hand
//  3. The per-candidate critical section is tiny, so one mutex is
//     cheaper than sharding or a collector goroutine
type Merger struct {
	mu      sync.Mutex
	records map[recordKey]*model.ContactRecord

	// order preserves first-insertion order for deterministic output.
	order []recordKey
}

// NewMerger creates an empty Merger.
func NewMerger() *Merger {
	return &Merger{
		records: make(map[recordKey]*model.ContactRecord),
		order:   make([]recordKey, 0),
	}
}

// Add merges candidates into the record set. Safe for concurrent use.
func (m *Merger) Add(candidates ...model.ContactCandidate) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range candidates {
		canonical := Canonicalize(c.Kind, c.Value)
		if canonical == "" {
			continue
		}
		key := recordKey{kind: c.Kind, value: canonical}

		record, ok := m.records[key]
		if !ok {
			record = &model.ContactRecord{
				Value:      canonical,
				Kind:       c.Kind,
				Sources:    make([]string, 0, 1),
				Site:       siteOf(c.SourceURL),
				Confidence: c.Confidence,
			}
			m.records[key] = record
			m.order = append(m.order, key)
		}

		record.AddSource(c.SourceURL)
		if c.Confidence < record.Confidence {
			record.Confidence = c.Confidence
		}
	}
}

// Len returns the number of distinct records merged so far.
func (m *Merger) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Records finalizes and returns the merged records in first-seen
// order. The plausibility check runs here: implausible records are
// flagged with a reason, never dropped.
func (m *Merger) Records() []model.ContactRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.ContactRecord, 0, len(m.order))
	for _, key := range m.order {
		record := *m.records[key]
		record.Sources = append([]string(nil), record.Sources...)
		if reason := implausible(record.Kind, record.Value); reason != "" {
			record.Flagged = true
			record.FlagReason = reason
		}
		out = append(out, record)
	}
	return out
}

// Canonicalize reduces a contact value to its comparison form:
// emails lowercased, phones digits-only with a leading country code 1
// stripped, addresses lowercased with whitespace collapsed. Returns ""
// for values that are empty after canonicalization.
func Canonicalize(kind model.ContactKind, value string) string {
	switch kind {
	case model.KindEmail:
		return strings.ToLower(strings.TrimSpace(value))
	case model.KindPhone:
		digits := make([]byte, 0, len(value))
		for i := 0; i < len(value); i++ {
			if value[i] >= '0' && value[i] <= '9' {
				digits = append(digits, value[i])
			}
		}
		if len(digits) == 11 && digits[0] == '1' {
			digits = digits[1:]
		}
		return string(digits)
	case model.KindAddress:
		return strings.Join(strings.Fields(strings.ToLower(value)), " ")
	default:
		return strings.TrimSpace(value)
	}
}

// placeholderDomains are email domains that signal test or throwaway
// data rather than a reachable government contact.
var placeholderDomains = map[string]bool{
	"example.com":    true,
	"example.org":    true,
	"example.net":    true,
	"test.com":       true,
	"email.com":      true,
	"domain.com":     true,
	"mailinator.com": true,
	"localhost":      true,
}

// implausible returns a flag reason for records failing the final
// plausibility check, or "" when the record looks real.
func implausible(kind model.ContactKind, canonical string) string {
	switch kind {
	case model.KindEmail:
		_, domain, ok := strings.Cut(canonical, "@")
		if ok && placeholderDomains[domain] {
			return "placeholder email domain"
		}
	case model.KindPhone:
		if len(canonical) > 0 && strings.Count(canonical, canonical[:1]) == len(canonical) {
			return "repeated-digit phone number"
		}
	}
	return ""
}

// siteOf infers the record's site from a source URL: the registrable
// domain of the host, falling back to the bare host when the public
// suffix list can't place it.
func siteOf(sourceURL string) string {
	host := frontier.Host(sourceURL)
	if host == "" {
		return ""
	}
	if reg, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return reg
	}
	return host
}
