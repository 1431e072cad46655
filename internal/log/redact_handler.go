package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// piiKeys contains attribute keys whose values are always masked.
// Components log contact values under these keys.
var piiKeys = map[string]bool{
	"email":   true,
	"emails":  true,
	"phone":   true,
	"phones":  true,
	"contact": true,
	"address": true,
	"value":   true,
}

// emailValuePattern matches an email address inside a string value.
// The local part is masked while the domain is kept, since the domain
// is needed to debug classification and the local part identifies a
// person.
var emailValuePattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@([A-Za-z0-9.\-]+\.[A-Za-z]{2,})`)

// phoneValuePattern matches a North American phone number in common
// formats. All but the last two digits are masked.
var phoneValuePattern = regexp.MustCompile(`(?:\+?1[-. ]?)?\(?\d{3}\)?[-. ]?\d{3}[-. ]?\d{2}(\d{2})`)

// MaskValue is the string used to replace fully masked values.
const MaskValue = "***REDACTED***"

// RedactHandler wraps an slog.Handler and masks contact information in
// log records before they reach the underlying handler.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Components keep logging naturally; privacy is enforced centrally
type RedactHandler struct {
	// handler is the underlying slog handler that receives masked records.
	handler slog.Handler
}

// NewRedactHandler creates a RedactHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewRedactHandler(handler slog.Handler) *RedactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and passes it on.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.maskAttr(a))
		return true
	})

	return h.handler.Handle(ctx, masked)
}

// WithAttrs returns a new handler with the given attributes added,
// masked first.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	maskedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		maskedAttrs[i] = h.maskAttr(a)
	}
	return &RedactHandler{handler: h.handler.WithAttrs(maskedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{handler: h.handler.WithGroup(name)}
}

// maskAttr masks a single attribute, recursively handling groups.
func (h *RedactHandler) maskAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		maskedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			maskedAttrs[i] = h.maskAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(maskedAttrs...)}
	}

	if piiKeys[strings.ToLower(a.Key)] {
		if a.Value.Kind() == slog.KindString {
			return slog.String(a.Key, MaskString(a.Value.String()))
		}
		return slog.String(a.Key, MaskValue)
	}

	// Contact values can leak through generic keys like "url" or "error",
	// so string values are always scanned.
	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, MaskString(a.Value.String()))
	}

	return a
}

// MaskString masks contact information inside an arbitrary string,
// leaving the rest of the text intact.
func MaskString(s string) string {
	s = emailValuePattern.ReplaceAllString(s, "***@$1")
	s = phoneValuePattern.ReplaceAllString(s, "***-**$1")
	return s
}

// NewLogger creates a *slog.Logger that masks contact information.
//
// Parameters:
//   - w: the io.Writer to write log output to (typically os.Stderr)
//   - verbose: if true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	return slog.New(NewRedactHandler(slog.NewTextHandler(w, opts)))
}
