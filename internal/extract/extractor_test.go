package extract

import (
	"testing"

	"github.com/civiccrawl/govharvest/internal/model"
)

func findCandidate(candidates []model.ContactCandidate, kind model.ContactKind, value string) *model.ContactCandidate {
	for i := range candidates {
		if candidates[i].Kind == kind && candidates[i].Value == value {
			return &candidates[i]
		}
	}
	return nil
}

// TestExtractFromHTML tests the full pipeline over an HTML page.
func TestExtractFromHTML(t *testing.T) {
	t.Parallel()

	html := `<html><head><title>Contact Us</title>
	<script>var tracker = "bot@tracker.example.com";</script>
	</head><body>
	<p>Email: <b>clerk@example.gov</b></p>
	<p>Obfuscated: records [at] example [dot] gov</p>
	<p>Entity encoded: mayor&#64;example.gov</p>
	<p>Phone: (512) 555-0134 or 1-800-555-0199</p>
	<p>Office: 100 Main Street, Suite 200, Springfield, IL 62701</p>
	</body></html>`

	e := New()
	result := &model.FetchResult{
		Outcome:     model.OutcomeOK,
		ContentType: "text/html",
		Body:        []byte(html),
	}
	candidates := e.Extract("https://example.gov/contact", result)

	direct := findCandidate(candidates, model.KindEmail, "clerk@example.gov")
	if direct == nil {
		t.Fatal("expected direct email candidate")
	}
	if direct.Confidence != model.ConfidenceHigh {
		t.Errorf("expected high confidence for direct match, got %s", direct.Confidence)
	}
	if direct.SourceURL != "https://example.gov/contact" {
		t.Errorf("unexpected source URL %q", direct.SourceURL)
	}

	deob := findCandidate(candidates, model.KindEmail, "records@example.gov")
	if deob == nil {
		t.Fatal("expected deobfuscated email candidate")
	}
	if deob.Confidence != model.ConfidenceLow {
		t.Errorf("expected low confidence for deobfuscated match, got %s", deob.Confidence)
	}

	if findCandidate(candidates, model.KindEmail, "mayor@example.gov") == nil {
		t.Error("expected entity-encoded email to be decoded and extracted")
	}

	// Script content is not visible text.
	if findCandidate(candidates, model.KindEmail, "bot@tracker.example.com") != nil {
		t.Error("expected script content to be excluded")
	}

	if findCandidate(candidates, model.KindPhone, "(512) 555-0134") == nil {
		t.Error("expected parenthesized phone candidate")
	}
	if findCandidate(candidates, model.KindPhone, "1-800-555-0199") == nil {
		t.Error("expected 1-prefixed phone candidate")
	}

	var address *model.ContactCandidate
	for i := range candidates {
		if candidates[i].Kind == model.KindAddress {
			address = &candidates[i]
		}
	}
	if address == nil {
		t.Fatal("expected an address candidate")
	}
	if address.Confidence != model.ConfidenceLow {
		t.Errorf("expected low confidence for address heuristic, got %s", address.Confidence)
	}
}

// TestExtractMailtoLinks tests that addresses published only inside
// mailto: hrefs are harvested from the markup.
func TestExtractMailtoLinks(t *testing.T) {
	t.Parallel()

	extract := func(t *testing.T, html string) []model.ContactCandidate {
		t.Helper()
		e := New()
		result := &model.FetchResult{
			Outcome:     model.OutcomeOK,
			ContentType: "text/html",
			Body:        []byte(html),
		}
		return e.Extract("https://example.gov/contact", result)
	}

	t.Run("link text never names the address", func(t *testing.T) {
		t.Parallel()

		candidates := extract(t, `<html><body>
		<a href="mailto:clerk@example.gov">Email the clerk</a>
		</body></html>`)

		got := findCandidate(candidates, model.KindEmail, "clerk@example.gov")
		if got == nil {
			t.Fatalf("expected email from mailto link, got %v", candidates)
		}
		if got.Confidence != model.ConfidenceHigh {
			t.Errorf("expected high confidence for mailto link, got %s", got.Confidence)
		}
	})

	t.Run("strips subject parameter", func(t *testing.T) {
		t.Parallel()

		candidates := extract(t,
			`<a href="mailto:records@example.gov?subject=FOIA%20request">Records</a>`)

		if findCandidate(candidates, model.KindEmail, "records@example.gov") == nil {
			t.Errorf("expected address without query parameters, got %v", candidates)
		}
	})

	t.Run("decodes percent encoding", func(t *testing.T) {
		t.Parallel()

		candidates := extract(t,
			`<a href="mailto:mayor%40example.gov">Mayor</a>`)

		if findCandidate(candidates, model.KindEmail, "mayor@example.gov") == nil {
			t.Errorf("expected percent-decoded address, got %v", candidates)
		}
	})

	t.Run("multiple recipients", func(t *testing.T) {
		t.Parallel()

		candidates := extract(t,
			`<a href="mailto:board@example.gov,chair@example.gov">Board</a>`)

		if findCandidate(candidates, model.KindEmail, "board@example.gov") == nil {
			t.Error("expected first recipient")
		}
		if findCandidate(candidates, model.KindEmail, "chair@example.gov") == nil {
			t.Error("expected second recipient")
		}
	})

	t.Run("invalid target discarded", func(t *testing.T) {
		t.Parallel()

		candidates := extract(t, `<a href="mailto:not-an-address">Broken</a>`)

		for _, c := range candidates {
			t.Errorf("expected no candidates, got %s %q", c.Kind, c.Value)
		}
	})

	t.Run("no duplicate with visible text", func(t *testing.T) {
		t.Parallel()

		candidates := extract(t,
			`<a href="mailto:clerk@example.gov">clerk@example.gov</a>`)

		count := 0
		for _, c := range candidates {
			if c.Kind == model.KindEmail && c.Value == "clerk@example.gov" {
				count++
			}
		}
		if count != 1 {
			t.Errorf("expected one candidate for address in both href and text, got %d", count)
		}
	})
}

// TestExtractSkipsFailures tests that failed fetches yield nothing.
func TestExtractSkipsFailures(t *testing.T) {
	t.Parallel()

	e := New()
	result := &model.FetchResult{
		Outcome:     model.OutcomeTimeout,
		ContentType: "text/html",
		Body:        []byte("clerk@example.gov"),
	}
	if got := e.Extract("https://example.gov", result); len(got) != 0 {
		t.Errorf("expected no candidates from failed fetch, got %d", len(got))
	}
}

// TestExtractInvalidDiscarded tests that malformed matches are dropped,
// not emitted as low confidence.
func TestExtractInvalidDiscarded(t *testing.T) {
	t.Parallel()

	e := New()
	candidates := e.ExtractFromText("https://example.gov",
		"broken: user@@example.gov double..dot@example.gov and 000-000-0000")

	for _, c := range candidates {
		t.Errorf("expected no candidates, got %s %q", c.Kind, c.Value)
	}
}

// TestExtractFromPDF tests the document-text path.
func TestExtractFromPDF(t *testing.T) {
	t.Parallel()

	pdf := "%PDF-1.4\n1 0 obj\nstream\nBT (Contact: treasurer@county.example.us) Tj ET\nendstream\n%%EOF"

	e := New()
	result := &model.FetchResult{
		Outcome:     model.OutcomeOK,
		ContentType: "application/pdf",
		Body:        []byte(pdf),
	}
	candidates := e.Extract("https://county.example.us/budget.pdf", result)

	if findCandidate(candidates, model.KindEmail, "treasurer@county.example.us") == nil {
		t.Errorf("expected email from PDF text, got %v", candidates)
	}
}

// TestExtractUnknownContentType tests that unregistered formats yield
// no candidates rather than errors.
func TestExtractUnknownContentType(t *testing.T) {
	t.Parallel()

	e := New()
	result := &model.FetchResult{
		Outcome:     model.OutcomeOK,
		ContentType: "image/png",
		Body:        []byte{0x89, 0x50, 0x4e, 0x47},
	}
	if got := e.Extract("https://example.gov/seal.png", result); len(got) != 0 {
		t.Errorf("expected no candidates for image content, got %d", len(got))
	}
}

// TestValidEmail tests the email grammar gate.
func TestValidEmail(t *testing.T) {
	t.Parallel()

	valid := []string{
		"info@example.gov",
		"jane.doe+tag@sub.agency.example.us",
		"a@b.co",
	}
	invalid := []string{
		"no-at-sign.example.gov",
		"two@@example.gov",
		"@example.gov",
		".dot@example.gov",
		"dot.@example.gov",
		"double..dot@example.gov",
		"user@nodot",
		"user@-bad-.gov",
		"user@example.123",
	}

	for _, email := range valid {
		if !ValidEmail(email) {
			t.Errorf("expected %q to be valid", email)
		}
	}
	for _, email := range invalid {
		if ValidEmail(email) {
			t.Errorf("expected %q to be invalid", email)
		}
	}
}

// TestValidPhone tests the phone shape gate.
func TestValidPhone(t *testing.T) {
	t.Parallel()

	valid := []string{"512-555-0134", "(512) 555-0134", "512.555.0134", "1-512-555-0134"}
	invalid := []string{"123-456-789", "012-345-6789", "112-555-0134"}

	for _, phone := range valid {
		if !ValidPhone(phone) {
			t.Errorf("expected %q to be valid", phone)
		}
	}
	for _, phone := range invalid {
		if ValidPhone(phone) {
			t.Errorf("expected %q to be invalid", phone)
		}
	}
}

// TestPDFTextExtractor tests literal string extraction and escapes.
func TestPDFTextExtractor(t *testing.T) {
	t.Parallel()

	t.Run("rejects non-pdf data", func(t *testing.T) {
		t.Parallel()

		if _, err := (PDFText{}).ExtractText([]byte("<html></html>"), "application/pdf"); err == nil {
			t.Error("expected error for non-PDF data")
		}
	})

	t.Run("unescapes literals", func(t *testing.T) {
		t.Parallel()

		pdf := `%PDF-1.7 BT (call \(512\) 555-0134) Tj ET`
		text, err := (PDFText{}).ExtractText([]byte(pdf), "application/pdf")
		if err != nil {
			t.Fatalf("failed to extract: %v", err)
		}
		if text != "call (512) 555-0134 " {
			t.Errorf("unexpected text %q", text)
		}
	})
}
