package report

import (
	"encoding/json"
	"io"

	"github.com/civiccrawl/govharvest/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
//  1. It's part of the standard library (no extra dependencies)
//  2. The report is written once per run, so encoding speed is irrelevant
//  3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version stamps the output with the generating tool version.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// WithVersion stamps the JSON envelope with a tool version string.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// jsonEnvelope wraps the report with output-specific metadata.
//
// Design decision: We wrap the report rather than adding fields to
// CrawlReport because version stamping is an output concern and should
// not pollute the core data structure.
type jsonEnvelope struct {
	// Version is the govharvest version that generated this report.
	Version string `json:"version,omitempty"`

	// Report is the full crawl report.
	Report *model.CrawlReport `json:"report"`
}

// Write outputs the report in JSON format.
func (w *JSONWriter) Write(report *model.CrawlReport) (int, error) {
	envelope := jsonEnvelope{Version: w.version, Report: report}

	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(envelope, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(envelope)
	}
	if err != nil {
		return 0, err
	}

	// Trailing newline for better terminal output.
	data = append(data, '\n')
	return w.output.Write(data)
}
