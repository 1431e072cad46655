package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/civiccrawl/govharvest/internal/model"
)

// timeRounding keeps elapsed times readable in terminal output.
const timeRounding = 10 * time.Millisecond

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
//  1. It works in all terminals without compatibility issues
//  2. It's easier to pipe to files or other tools
//  3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables per-record source URLs in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with source URLs per contact.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeStats(&sb, report)
	w.writeContacts(&sb, report)
	w.writeSites(&sb, report)
	w.writeFailures(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        GOVHARVEST REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Seeds:      %s\n", strings.Join(report.Seeds, ", ")))
	sb.WriteString(fmt.Sprintf("Started:    %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed:    %s\n", report.Elapsed.Round(timeRounding)))

	if report.Cancelled {
		sb.WriteString("Status:     CANCELLED (partial results)\n")
	} else {
		sb.WriteString("Status:     Complete\n")
	}
	sb.WriteString("\n")
}

// writeStats writes the crawl statistics section.
func (w *SimpleWriter) writeStats(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CRAWL STATISTICS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Pages visited: %d\n", report.Stats.PagesVisited))
	sb.WriteString(fmt.Sprintf("  Pages failed:  %d\n", report.Stats.PagesFailed))
	sb.WriteString(fmt.Sprintf("  Pages pruned:  %d\n", report.Stats.PagesPruned))
	sb.WriteString(fmt.Sprintf("  Cache hits:    %d\n", report.Stats.CacheHits))
	sb.WriteString(fmt.Sprintf("  Retries:       %d\n", report.Stats.Retries))
	if report.Stats.ParseErrors > 0 {
		sb.WriteString(fmt.Sprintf("  Parse errors:  %d\n", report.Stats.ParseErrors))
	}
	sb.WriteString("\n")
}

// writeContacts writes the contact records section, grouped by kind.
func (w *SimpleWriter) writeContacts(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.Contacts) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("CONTACTS (%d)\n", len(report.Contacts)))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Contacts) == 0 {
		sb.WriteString("  No contacts found\n\n")
		return
	}

	kinds := []model.ContactKind{model.KindEmail, model.KindPhone, model.KindAddress}
	for _, kind := range kinds {
		w.writeContactsOfKind(sb, kind, report.Contacts)
	}
}

// writeContactsOfKind writes the records of one kind.
func (w *SimpleWriter) writeContactsOfKind(sb *strings.Builder, kind model.ContactKind, contacts []model.ContactRecord) {
	wrote := false
	for _, contact := range contacts {
		if contact.Kind != kind {
			continue
		}
		if !wrote {
			sb.WriteString(fmt.Sprintf("[%s]\n", strings.ToUpper(string(kind))))
			wrote = true
		}

		marker := " "
		if contact.Flagged {
			marker = "?"
		}
		sb.WriteString(fmt.Sprintf("  %s %s (%s confidence, %d sources)\n",
			marker, contact.Value, contact.Confidence, len(contact.Sources)))
		if contact.Flagged {
			sb.WriteString(fmt.Sprintf("      flagged: %s\n", contact.FlagReason))
		}
		if w.verbose {
			for _, source := range contact.Sources {
				sb.WriteString(fmt.Sprintf("      from %s\n", source))
			}
		}
	}
	if wrote {
		sb.WriteString("\n")
	}
}

// writeSites writes the discovered sites section.
func (w *SimpleWriter) writeSites(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.Sites) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("DISCOVERED SITES (%d)\n", len(report.Sites)))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Sites) == 0 {
		sb.WriteString("  No sites discovered\n")
	}
	for _, site := range report.Sites {
		line := fmt.Sprintf("  [+] %s (%s", site.Domain, site.Level)
		if site.StateCode != "" {
			line += ", " + site.StateCode
		}
		line += ")"
		if site.Name != "" {
			line += " " + site.Name
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")
}

// writeFailures writes the failure samples section.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.Failures) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILURE SAMPLES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, failure := range report.Failures {
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", failure.Outcome, failure.URL))
		if failure.Error != "" {
			sb.WriteString(fmt.Sprintf("      %s\n", truncateString(failure.Error, 100)))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by govharvest\n")
	sb.WriteString("https://github.com/civiccrawl/govharvest\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
