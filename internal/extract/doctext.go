package extract

import (
	"errors"
	"regexp"
	"strings"
)

// TextExtractor converts a non-HTML document to plain text so the
// pattern pipeline can run over it. Implementations handle one format
// family; the extractor picks one by MIME type.
//
// Design decision: This is an interface rather than a function table
// because deployments routinely swap in an external converter (a
// tika-style service or a CLI tool) for better fidelity, and an
// interface keeps that a one-line change.
type TextExtractor interface {
	// ExtractText returns the document's plain text.
	ExtractText(data []byte, mimeType string) (string, error)
}

// PlainText passes text documents through unchanged.
type PlainText struct{}

// ExtractText returns the bytes as a string.
func (PlainText) ExtractText(data []byte, _ string) (string, error) {
	return string(data), nil
}

// ErrNotPDF is returned when the data lacks a PDF header.
var ErrNotPDF = errors.New("data is not a PDF document")

// pdfTextShowPattern matches literal strings in PDF content streams:
// "(text) Tj" and the array form used by TJ operators.
var pdfTextShowPattern = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*T[jJ]`)

// pdfEscapePattern matches backslash escapes inside PDF literals.
var pdfEscapePattern = regexp.MustCompile(`\\([()\\nrt])`)

// PDFText extracts text from PDF documents by scanning uncompressed
// content streams for text-show operators. Compressed streams are
// skipped; this trades fidelity for zero native dependencies, and in
// practice catches the contact footers most agency PDFs carry in
// plainly encoded form. Deployments that need full-fidelity PDF text
// should register an external TextExtractor instead.
type PDFText struct{}

// ExtractText returns the text found in the PDF's plain content streams.
func (PDFText) ExtractText(data []byte, _ string) (string, error) {
	if len(data) < 5 || string(data[:5]) != "%PDF-" {
		return "", ErrNotPDF
	}

	var b strings.Builder
	for _, m := range pdfTextShowPattern.FindAllSubmatch(data, -1) {
		text := pdfEscapePattern.ReplaceAllStringFunc(string(m[1]), func(esc string) string {
			switch esc[1] {
			case 'n':
				return "\n"
			case 'r':
				return "\r"
			case 't':
				return "\t"
			default:
				return string(esc[1])
			}
		})
		b.WriteString(text)
		b.WriteString(" ")
	}

	return b.String(), nil
}
