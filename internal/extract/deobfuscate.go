package extract

import (
	"regexp"
	"strings"
)

// Obfuscation patterns. People hide addresses from naive scrapers with
// textual substitutions; each pattern below reverses one family of
// tricks. Every rewritten candidate is re-validated against the email
// grammar before use, so an over-eager match is discarded rather than
// emitted.
var (
	// wordObfuscatedPattern matches "name [at] agency [dot] gov",
	// "name (at) agency (dot) gov", and the bare-word "name AT agency
	// DOT gov" form. The dot group repeats so "name at sub dot agency
	// dot gov" resolves every label.
	wordObfuscatedPattern = regexp.MustCompile(
		`(?i)\b([a-z0-9._%+\-]+)\s*[\[\(]?\s*at\s*[\]\)]?\s+([a-z0-9\-]+(?:\s*(?:[\[\(]\s*dot\s*[\]\)]|\s+dot\s+|\.)\s*[a-z0-9\-]+)+)\b`)

	// dotWordPattern rewrites the "dot" separators captured above.
	dotWordPattern = regexp.MustCompile(`(?i)\s*(?:[\[\(]\s*dot\s*[\]\)]|\bdot\b)\s*`)

	// spacedPattern matches addresses with whitespace injected around
	// the @ and the dots: "info @ example . gov".
	spacedPattern = regexp.MustCompile(
		`(?i)\b([a-z0-9._%+\-]+)\s*@\s*([a-z0-9\-]+(?:\s*\.\s*[a-z0-9\-]+)+)\b`)

	// reversedTokenPattern finds tokens worth testing for character
	// reversal: an @ with a plausible TLD at the front.
	reversedTokenPattern = regexp.MustCompile(
		`\b[a-zA-Z]{2,}\.[a-zA-Z0-9.\-]+@[a-zA-Z0-9._%+\-]+\b`)
)

// Deobfuscate finds disguised email addresses in text and returns them
// in canonical user@domain form. Entity-encoded @ signs are already
// plain text by the time this runs; the visible-text stage decodes
// entities.
func Deobfuscate(text string) []string {
	seen := make(map[string]bool)
	emails := make([]string, 0)

	add := func(candidate string) {
		candidate = strings.ToLower(candidate)
		if !ValidEmail(candidate) || seen[candidate] {
			return
		}
		seen[candidate] = true
		emails = append(emails, candidate)
	}

	// "[at]" / "(at)" / bare "at" with "dot" separators.
	for _, m := range wordObfuscatedPattern.FindAllStringSubmatch(text, -1) {
		local := m[1]
		domain := dotWordPattern.ReplaceAllString(m[2], ".")
		domain = strings.ReplaceAll(domain, " ", "")
		add(local + "@" + domain)
	}

	// Whitespace-injected addresses.
	for _, m := range spacedPattern.FindAllStringSubmatch(text, -1) {
		domain := strings.ReplaceAll(strings.ReplaceAll(m[2], " ", ""), "\t", "")
		add(m[1] + "@" + domain)
	}

	// Character-reversed addresses: the token starts with a common TLD
	// spelled backwards, so reverse it and re-test. The prefix check is
	// what keeps ordinary dotted addresses (jane.doe@agency.gov) from
	// being "reversed" into fabricated ones.
	for _, token := range reversedTokenPattern.FindAllString(text, -1) {
		if !LooksReversed(token) || PlausibleTLD(token) {
			continue
		}
		reversed := reverse(token)
		if ValidEmail(strings.ToLower(reversed)) {
			add(reversed)
		}
	}

	return emails
}

// reversedTLDPrefixes are common TLDs spelled backwards. A token
// beginning with one of these reads as a reversed email address.
var reversedTLDPrefixes = []string{
	"vog.", "lim.", "su.", "moc.", "gro.", "ten.", "ude.",
}

// LooksReversed reports whether a token begins with a reversed TLD.
func LooksReversed(token string) bool {
	lower := strings.ToLower(token)
	for _, prefix := range reversedTLDPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// plausibleTLDs are TLDs common enough that an address ending in one
// should be taken at face value rather than treated as reversed.
var plausibleTLDs = map[string]bool{
	"gov": true, "mil": true, "us": true, "com": true, "org": true,
	"net": true, "edu": true, "info": true, "biz": true, "io": true,
}

// PlausibleTLD reports whether the address-like token ends in a TLD
// worth believing.
func PlausibleTLD(token string) bool {
	lower := strings.ToLower(token)
	i := strings.LastIndex(lower, ".")
	if i < 0 || i == len(lower)-1 {
		return false
	}
	return plausibleTLDs[lower[i+1:]]
}

// reverse returns the string with its characters in reverse order.
func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
