package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/civiccrawl/govharvest/internal/model"
)

// CSVWriter outputs the report's contact records as a flat CSV table.
// This is the format spreadsheet users and downstream loaders consume;
// run statistics and discovered sites are not included.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// contactRow is the flat CSV projection of one contact record.
// Multi-valued sources are joined with a space so the row stays one
// line in any CSV dialect.
type contactRow struct {
	Value      string `csv:"value"`
	Kind       string `csv:"kind"`
	Site       string `csv:"site"`
	Confidence string `csv:"confidence"`
	Sources    string `csv:"sources"`
	Flagged    string `csv:"flagged"`
	FlagReason string `csv:"flag_reason"`
}

// Write outputs the contact table in CSV format.
func (w *CSVWriter) Write(report *model.CrawlReport) (int, error) {
	rows := make([]contactRow, 0, len(report.Contacts))
	for _, contact := range report.Contacts {
		rows = append(rows, contactRow{
			Value:      contact.Value,
			Kind:       string(contact.Kind),
			Site:       contact.Site,
			Confidence: contact.Confidence.String(),
			Sources:    strings.Join(contact.Sources, " "),
			Flagged:    strconv.FormatBool(contact.Flagged),
			FlagReason: contact.FlagReason,
		})
	}

	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return 0, err
	}
	return w.output.Write([]byte(out))
}
