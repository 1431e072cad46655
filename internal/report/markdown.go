package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/civiccrawl/govharvest/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
//  1. Type-safe markdown generation
//  2. Support for tables, lists, and code blocks
//  3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeStats(md, report)
	w.writeContacts(md, report)
	w.writeSites(md, report)
	w.writeFailures(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Government Contact Harvest Report")
	md.PlainText("")

	status := "✅ Complete"
	if report.Cancelled {
		status = "⚠️ Cancelled (partial results)"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seeds", "`" + strings.Join(report.Seeds, "`, `") + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", report.Elapsed.Round(timeRounding).String()},
			{"Status", status},
		},
	})
	md.PlainText("")
}

// writeStats writes the crawl statistics section with an outcome chart.
func (w *MarkdownWriter) writeStats(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Crawl Statistics")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Pages visited", strconv.Itoa(report.Stats.PagesVisited)},
			{"Pages failed", strconv.Itoa(report.Stats.PagesFailed)},
			{"Pages pruned", strconv.Itoa(report.Stats.PagesPruned)},
			{"Cache hits", strconv.Itoa(report.Stats.CacheHits)},
			{"Retries", strconv.Itoa(report.Stats.Retries)},
			{"Parse errors", strconv.Itoa(report.Stats.ParseErrors)},
		},
	})
	md.PlainText("")

	if len(report.Stats.ByOutcome) > 0 {
		w.writeOutcomeChart(md, report)
	}

	switch {
	case report.Stats.PagesVisited == 0:
		md.Warningf("No pages could be fetched. Check the seed URLs and network access.")
	case report.Stats.PagesFailed > report.Stats.PagesVisited:
		md.Importantf("More pages failed (%d) than succeeded (%d); results are likely incomplete.",
			report.Stats.PagesFailed, report.Stats.PagesVisited)
	}
	md.PlainText("")
}

// writeOutcomeChart writes a mermaid pie chart of fetch outcomes.
func (w *MarkdownWriter) writeOutcomeChart(md *markdown.Markdown, report *model.CrawlReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Fetch Outcome Distribution"),
		piechart.WithShowData(true),
	)

	// Fixed iteration order so the chart is stable across runs.
	outcomes := []model.Outcome{
		model.OutcomeOK,
		model.OutcomeHTTPError,
		model.OutcomeNetworkError,
		model.OutcomeTimeout,
		model.OutcomeExhaustedRetries,
		model.OutcomeBudgetExceeded,
	}
	for _, outcome := range outcomes {
		if count := report.Stats.ByOutcome[outcome]; count > 0 {
			chart.LabelAndIntValue(string(outcome), uint64(count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeContacts writes the contact records as one table per kind.
func (w *MarkdownWriter) writeContacts(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Contacts")
	md.PlainText("")

	if len(report.Contacts) == 0 {
		md.PlainText("No contacts found.")
		md.PlainText("")
		return
	}

	kinds := []struct {
		kind   model.ContactKind
		header string
	}{
		{model.KindEmail, "### 📧 Email Addresses"},
		{model.KindPhone, "### 📞 Phone Numbers"},
		{model.KindAddress, "### 📍 Postal Addresses"},
	}

	for _, k := range kinds {
		rows := make([][]string, 0)
		for _, contact := range report.Contacts {
			if contact.Kind != k.kind {
				continue
			}
			flagged := "-"
			if contact.Flagged {
				flagged = contact.FlagReason
			}
			rows = append(rows, []string{
				truncateString(contact.Value, 60),
				contact.Site,
				contact.Confidence.String(),
				strconv.Itoa(len(contact.Sources)),
				flagged,
			})
		}
		if len(rows) == 0 {
			continue
		}

		md.PlainText(k.header)
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Value", "Site", "Confidence", "Sources", "Flagged"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeSites writes the discovered sites table.
func (w *MarkdownWriter) writeSites(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Discovered Sites")
	md.PlainText("")

	if len(report.Sites) == 0 {
		md.PlainText("No government sites discovered.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Sites))
	for i, site := range report.Sites {
		rows[i] = []string{
			"`" + site.Domain + "`",
			string(site.Level),
			site.Name,
			site.StateCode,
			truncateString(site.SourceURL, 50),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Domain", "Level", "Name", "State", "Found On"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFailures writes the failure samples, if any.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.Failures) == 0 {
		return
	}

	md.H2("Failure Samples")
	md.PlainText("")

	rows := make([][]string, len(report.Failures))
	for i, failure := range report.Failures {
		rows[i] = []string{
			truncateString(failure.URL, 60),
			string(failure.Outcome),
			truncateString(failure.Error, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Outcome", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [govharvest](https://github.com/civiccrawl/govharvest)*")
}
