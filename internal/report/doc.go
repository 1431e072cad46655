// Package report renders crawl reports for people and for tools.
//
// Four writers share one interface: a plain-text writer for terminals,
// a JSON writer for programmatic consumers, a Markdown writer for
// documentation and sharing, and a CSV writer producing flat contact
// tables for spreadsheet import. A MultiWriter fans one report out to
// several destinations.
package report
