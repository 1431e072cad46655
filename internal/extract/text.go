package extract

import (
	"bytes"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

var whitespacePattern = regexp.MustCompile(`[ \t]+`)

// VisibleText reduces an HTML document to the text a visitor would
// see. Script, style, and noscript content is dropped, entities are
// decoded, and the result is NFKC-normalized so fullwidth and other
// compatibility characters (a favorite of email obfuscators) match the
// ASCII patterns downstream.
//
// If the body cannot be parsed as HTML, the raw bytes are returned as
// text; partial extraction from broken markup beats extracting nothing.
func VisibleText(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return normalizeText(string(body))
	}

	doc.Find("script, style, noscript").Remove()

	var b strings.Builder
	doc.Find("body").Each(func(_ int, sel *goquery.Selection) {
		b.WriteString(sel.Text())
		b.WriteString(" ")
	})
	text := b.String()
	if strings.TrimSpace(text) == "" {
		// Fragment without a <body>; take everything.
		text = doc.Text()
	}

	return normalizeText(text)
}

// MailtoEmails returns the addresses carried in mailto: links. They
// live in href attributes, which the visible-text pass never sees, and
// on government contact pages they are the most common way an email is
// published at all. Query parameters (?subject=...) are stripped and
// percent-encoding is decoded; comma-separated recipient lists yield
// one address each. Addresses are lowercased but not validated here.
func MailtoEmails(body []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var emails []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if !strings.HasPrefix(strings.ToLower(href), "mailto:") {
			return
		}

		addr := href[len("mailto:"):]
		if i := strings.IndexAny(addr, "?#"); i >= 0 {
			addr = addr[:i]
		}
		if unescaped, err := url.QueryUnescape(addr); err == nil {
			addr = unescaped
		}

		for _, part := range strings.Split(addr, ",") {
			if email := strings.ToLower(strings.TrimSpace(part)); email != "" {
				emails = append(emails, email)
			}
		}
	})
	return emails
}

// normalizeText decodes entities, applies NFKC, and collapses runs of
// spaces and tabs. Newlines are preserved: address heuristics rely on
// line boundaries.
func normalizeText(s string) string {
	s = html.UnescapeString(s)
	s = norm.NFKC.String(s)
	s = whitespacePattern.ReplaceAllString(s, " ")
	return s
}
