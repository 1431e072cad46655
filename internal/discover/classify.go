package discover

import (
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/civiccrawl/govharvest/internal/config"
	"github.com/civiccrawl/govharvest/internal/model"
)

// Locality patterns from the .us namespace delegation scheme:
// state.<st>.us, ci.<city>.<st>.us, co.<county>.<st>.us. The two-letter
// state code is captured so discovered sites carry it.
var (
	statePattern  = regexp.MustCompile(`(?:^|\.)state\.([a-z]{2})\.us$`)
	cityPattern   = regexp.MustCompile(`(?:^|\.)(?:ci|city)\.[a-z0-9\-]+\.([a-z]{2})\.us$`)
	countyPattern = regexp.MustCompile(`(?:^|\.)(?:co|county)\.[a-z0-9\-]+\.([a-z]{2})\.us$`)
)

// priorityKeywords mark links likely to lead to contact information.
// Checked against both the URL path and the anchor text.
var priorityKeywords = []string{
	"contact", "about", "staff", "directory",
	"department", "officials", "elected", "leadership",
}

// Classifier decides whether a host is an in-scope government site and
// which jurisdiction level it belongs to.
//
// Design decision: Classification is a deterministic rule cascade with
// most-specific-pattern-wins ordering because:
//  1. Seed-list entries are authoritative and override inference
//  2. Locality patterns (ci./co./state. under .us) are unambiguous
//  3. Keyword hints in .gov domains beat the generic federal fallback
//  4. The same input always yields the same level, which keeps
//     dedup and reporting stable across runs
type Classifier struct {
	// seeds maps a seed domain to its authoritative entry.
	seeds map[string]config.SeedEntry
}

// NewClassifier creates a Classifier. Seed entries act as an
// authoritative override: a host matching a seed domain inherits the
// seed's level, name, and state code.
func NewClassifier(seeds []config.SeedEntry) *Classifier {
	index := make(map[string]config.SeedEntry, len(seeds))
	for _, seed := range seeds {
		domain := strings.ToLower(strings.TrimSpace(seed.Domain))
		if domain == "" {
			continue
		}
		index[domain] = seed
	}
	return &Classifier{seeds: index}
}

// InScope reports whether a host falls under the government allow-list
// policy: a seed domain, a .gov or .mil suffix, or a recognized
// state/municipal .us pattern.
func (c *Classifier) InScope(host string) bool {
	host = strings.ToLower(host)
	if host == "" {
		return false
	}
	if _, ok := c.seedFor(host); ok {
		return true
	}
	if hasDomainSuffix(host, "gov") || hasDomainSuffix(host, "mil") {
		return true
	}
	return statePattern.MatchString(host) ||
		cityPattern.MatchString(host) ||
		countyPattern.MatchString(host)
}

// Classify infers the jurisdiction level of a host. In-scope hosts that
// match no specific rule come back as unknown rather than being
// rejected, so they can still be crawled.
func (c *Classifier) Classify(host string) model.JurisdictionLevel {
	host = strings.ToLower(host)

	if seed, ok := c.seedFor(host); ok {
		if level := seed.JurisdictionLevel(); level != model.LevelUnknown {
			return level
		}
	}

	// Locality patterns are the most specific signal.
	switch {
	case cityPattern.MatchString(host):
		return model.LevelCity
	case countyPattern.MatchString(host):
		return model.LevelCounty
	case statePattern.MatchString(host):
		return model.LevelState
	}

	// Keyword hints in the domain labels beat the suffix fallback.
	labels := strings.Split(host, ".")
	for _, label := range labels {
		switch {
		case label == "city" || strings.HasPrefix(label, "cityof"):
			return model.LevelCity
		case label == "county" || strings.HasPrefix(label, "countyof"):
			return model.LevelCounty
		case label == "state" || strings.HasPrefix(label, "stateof"):
			return model.LevelState
		}
	}

	if hasDomainSuffix(host, "gov") || hasDomainSuffix(host, "mil") {
		return model.LevelFederal
	}
	return model.LevelUnknown
}

// Site builds a DiscoveredSite for an in-scope host, filling in the
// level, a human-readable name when one is inferable, and the state
// code when the host or seed entry carries one.
func (c *Classifier) Site(host, sourceURL string) model.DiscoveredSite {
	host = strings.ToLower(host)
	site := model.DiscoveredSite{
		Domain:    host,
		Level:     c.Classify(host),
		Name:      inferName(host),
		StateCode: stateCode(host),
		SourceURL: sourceURL,
	}
	if seed, ok := c.seedFor(host); ok {
		if seed.Name != "" {
			site.Name = seed.Name
		}
		if seed.StateCode != "" {
			site.StateCode = strings.ToUpper(seed.StateCode)
		}
	}
	return site
}

// PriorityLink reports whether a link looks like it leads to contact
// information, based on its URL path and anchor text. Priority links
// are dequeued before their siblings at the same depth.
func PriorityLink(linkURL, anchorText string) bool {
	haystack := strings.ToLower(linkURL) + " " + strings.ToLower(anchorText)
	for _, keyword := range priorityKeywords {
		if strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}

// seedFor finds the seed entry covering a host, matching the exact host
// first and then each parent domain, so www.portal.example.gov matches
// a seed for portal.example.gov or example.gov.
func (c *Classifier) seedFor(host string) (config.SeedEntry, bool) {
	for rest := host; rest != ""; {
		if seed, ok := c.seeds[rest]; ok {
			return seed, true
		}
		i := strings.Index(rest, ".")
		if i < 0 {
			break
		}
		rest = rest[i+1:]
	}
	return config.SeedEntry{}, false
}

// registrableDomain returns the eTLD+1 for a host, or "" when the host
// is itself a public suffix or otherwise unparsable.
func registrableDomain(host string) string {
	reg, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return reg
}

// hasDomainSuffix reports whether the host's final label equals tld.
func hasDomainSuffix(host, tld string) bool {
	return host == tld || strings.HasSuffix(host, "."+tld)
}

// stateCode extracts the two-letter state code from a .us locality
// host, uppercased, or "" when none is present.
func stateCode(host string) string {
	for _, pattern := range []*regexp.Regexp{statePattern, cityPattern, countyPattern} {
		if m := pattern.FindStringSubmatch(host); m != nil {
			return strings.ToUpper(m[1])
		}
	}
	return ""
}

// inferName derives a display name from the host's registrable domain.
// "cityofaustin.gov" becomes "City of Austin"; hyphenated labels become
// spaced title-case words. The result is a hint, not a guarantee.
func inferName(host string) string {
	reg := registrableDomain(host)
	if reg == "" {
		reg = host
	}
	label, _, _ := strings.Cut(reg, ".")
	switch {
	case strings.HasPrefix(label, "cityof") && len(label) > len("cityof"):
		return "City of " + titleWords(label[len("cityof"):])
	case strings.HasPrefix(label, "countyof") && len(label) > len("countyof"):
		return "County of " + titleWords(label[len("countyof"):])
	default:
		return titleWords(label)
	}
}

// titleWords turns a hyphenated lowercase label into title-case words.
func titleWords(label string) string {
	words := strings.Split(label, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
