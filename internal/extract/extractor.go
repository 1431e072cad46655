package extract

import (
	"regexp"
	"strings"

	"github.com/civiccrawl/govharvest/internal/model"
)

// Extraction patterns for well-formed contact values.
var (
	// emailPattern matches plainly written email addresses.
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	// phonePatterns match the North American formats government sites
	// actually publish: 123-456-7890, (123) 456-7890, 123.456.7890,
	// and 1-123-456-7890.
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b1-\d{3}-\d{3}-\d{4}\b`),
		regexp.MustCompile(`\b\d{3}-\d{3}-\d{4}\b`),
		regexp.MustCompile(`\(\d{3}\)\s*\d{3}-\d{4}`),
		regexp.MustCompile(`\b\d{3}\.\d{3}\.\d{4}\b`),
	}

	// addressPattern is a street-address heuristic: a street number,
	// one to five name words, and a street suffix, optionally followed
	// by a unit and a city/state/ZIP tail.
	addressPattern = regexp.MustCompile(
		`\b\d{1,6}\s+(?:[A-Z][a-zA-Z.]*\s+){1,5}` +
			`(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Way|Court|Ct|Circle|Cir|Plaza|Square|Sq|Highway|Hwy|Parkway|Pkwy)\.?` +
			`(?:,?\s+(?:Suite|Ste|Unit|Room|Rm|#)\.?\s*[0-9A-Za-z\-]+)?` +
			`(?:,\s*[A-Z][a-zA-Z ]+,\s*[A-Z]{2}\s+\d{5}(?:-\d{4})?)?`)

	// emailLabelPattern validates one domain label.
	emailLabelPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9\-]*[a-zA-Z0-9])?$`)

	// tldPattern validates the final domain label.
	tldPattern = regexp.MustCompile(`^[a-zA-Z]{2,}$`)
)

// Extractor scans page text for contact candidates.
type Extractor struct {
	// textExtractors convert non-HTML documents to plain text before
	// pattern matching, keyed by MIME type prefix.
	textExtractors map[string]TextExtractor
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTextExtractor registers a document text extractor for a MIME
// type prefix (e.g. "application/pdf").
func WithTextExtractor(mimePrefix string, te TextExtractor) Option {
	return func(e *Extractor) {
		e.textExtractors[mimePrefix] = te
	}
}

// New creates an Extractor. A PDF text extractor is registered by
// default; callers can add or replace extractors via options.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		textExtractors: map[string]TextExtractor{
			"application/pdf": PDFText{},
			"text/plain":      PlainText{},
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract scans a fetched page for contact candidates. HTML bodies are
// reduced to visible text; registered document types go through their
// text extractor; anything else yields no candidates.
func (e *Extractor) Extract(pageURL string, result *model.FetchResult) []model.ContactCandidate {
	if result == nil || !result.Outcome.Success() {
		return nil
	}

	var text string
	var mailto []string
	switch {
	case result.IsHTML():
		text = VisibleText(result.Body)
		mailto = MailtoEmails(result.Body)
	default:
		te := e.extractorFor(result.ContentType)
		if te == nil {
			return nil
		}
		extracted, err := te.ExtractText(result.Body, result.ContentType)
		if err != nil {
			return nil
		}
		text = normalizeText(extracted)
	}

	return e.extract(pageURL, text, mailto)
}

// ExtractFromText runs the pattern pipeline over already-plain text.
func (e *Extractor) ExtractFromText(pageURL, text string) []model.ContactCandidate {
	return e.extract(pageURL, text, nil)
}

// extract runs the candidate passes over visible text plus any mailto
// link targets collected from the markup.
func (e *Extractor) extract(pageURL, text string, mailto []string) []model.ContactCandidate {
	candidates := make([]model.ContactCandidate, 0)
	seenEmails := make(map[string]bool)

	// Pass zero: mailto link targets. The author typed these as
	// addresses, so a valid one is as trustworthy as a plainly written
	// match.
	for _, email := range mailto {
		if !ValidEmail(email) || seenEmails[email] {
			continue
		}
		seenEmails[email] = true
		candidates = append(candidates, model.ContactCandidate{
			Value:      email,
			Kind:       model.KindEmail,
			SourceURL:  pageURL,
			Confidence: model.ConfidenceHigh,
		})
	}

	// Pass one: plainly written emails. Tokens that read as reversed
	// addresses (and don't end in a believable TLD) are left for the
	// deobfuscation pass.
	for _, match := range emailPattern.FindAllString(text, -1) {
		email := strings.ToLower(match)
		if !ValidEmail(email) || seenEmails[email] {
			continue
		}
		if LooksReversed(email) && !PlausibleTLD(email) {
			continue
		}
		seenEmails[email] = true
		candidates = append(candidates, model.ContactCandidate{
			Value:      email,
			Kind:       model.KindEmail,
			SourceURL:  pageURL,
			Confidence: model.ConfidenceHigh,
		})
	}

	// Pass two: deobfuscated emails. Anything already found plainly is
	// skipped so direct matches keep their high confidence.
	for _, email := range Deobfuscate(text) {
		if seenEmails[email] {
			continue
		}
		seenEmails[email] = true
		candidates = append(candidates, model.ContactCandidate{
			Value:      email,
			Kind:       model.KindEmail,
			SourceURL:  pageURL,
			Confidence: model.ConfidenceLow,
		})
	}

	// Phones.
	seenPhones := make(map[string]bool)
	for _, pattern := range phonePatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			if !ValidPhone(match) || seenPhones[match] {
				continue
			}
			seenPhones[match] = true
			candidates = append(candidates, model.ContactCandidate{
				Value:      match,
				Kind:       model.KindPhone,
				SourceURL:  pageURL,
				Confidence: model.ConfidenceHigh,
			})
		}
	}

	// Pass three: address heuristics. Always low confidence.
	seenAddresses := make(map[string]bool)
	for _, match := range addressPattern.FindAllString(text, -1) {
		addr := strings.TrimSpace(match)
		if seenAddresses[addr] {
			continue
		}
		seenAddresses[addr] = true
		candidates = append(candidates, model.ContactCandidate{
			Value:      addr,
			Kind:       model.KindAddress,
			SourceURL:  pageURL,
			Confidence: model.ConfidenceLow,
		})
	}

	return candidates
}

// extractorFor finds a registered text extractor for a content type.
func (e *Extractor) extractorFor(contentType string) TextExtractor {
	for prefix, te := range e.textExtractors {
		if strings.HasPrefix(contentType, prefix) {
			return te
		}
	}
	return nil
}

// ValidEmail checks email syntax: exactly one @, a non-empty local
// part with allowed characters, and a domain of valid labels ending in
// an alphabetic TLD. Matches that fail are discarded, not demoted.
func ValidEmail(email string) bool {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return false
	}
	if local == "" || len(local) > 64 {
		return false
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") || strings.Contains(local, "..") {
		return false
	}
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("._%+-", r):
		default:
			return false
		}
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !emailLabelPattern.MatchString(label) {
			return false
		}
	}
	return tldPattern.MatchString(labels[len(labels)-1])
}

// ValidPhone checks that a formatted phone number carries exactly ten
// digits after stripping a leading country code 1, and that the area
// code doesn't start with 0 or 1.
func ValidPhone(phone string) bool {
	digits := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return false
	}
	return digits[0] >= '2'
}
