// Package log provides a privacy-aware slog handler for govharvest.
//
// The crawler's whole purpose is to collect contact information, which
// means raw emails and phone numbers flow through every component. The
// RedactHandler keeps them out of log output: diagnostic logs routinely
// end up in shared systems, and a debug trace should not become a
// second, unmanaged copy of the contact dataset.
package log
