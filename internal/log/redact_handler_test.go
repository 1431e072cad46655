package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestMaskString tests contact masking inside arbitrary strings.
func TestMaskString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		want  string
	}{
		{
			name: "email local part masked, domain kept",
			in:   "found info@example.gov on page",
			want: "found ***@example.gov on page",
		},
		{
			name: "phone masked except last two digits",
			in:   "call (512) 555-0134 today",
			want: "call ***-**34 today",
		},
		{
			name: "plain text untouched",
			in:   "fetched 12 pages from example.gov",
			want: "fetched 12 pages from example.gov",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := MaskString(tt.in); got != tt.want {
				t.Errorf("MaskString(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestRedactHandler tests that records are masked end to end.
func TestRedactHandler(t *testing.T) {
	t.Parallel()

	t.Run("masks pii keys", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewRedactHandler(slog.NewTextHandler(&buf, nil)))

		logger.Info("extracted contact", "email", "jane.doe@agency.gov", "count", 3)

		out := buf.String()
		if strings.Contains(out, "jane.doe") {
			t.Errorf("expected local part masked, got %q", out)
		}
		if !strings.Contains(out, "agency.gov") {
			t.Errorf("expected domain preserved, got %q", out)
		}
		if !strings.Contains(out, "count=3") {
			t.Errorf("expected non-PII attrs untouched, got %q", out)
		}
	})

	t.Run("masks emails under generic keys", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewRedactHandler(slog.NewTextHandler(&buf, nil)))

		logger.Warn("fetch failed", "url", "https://example.gov/mailto/info@example.gov")

		if strings.Contains(buf.String(), "info@example.gov") {
			t.Errorf("expected email masked in url attr, got %q", buf.String())
		}
	})

	t.Run("masks attrs added via With", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewRedactHandler(slog.NewTextHandler(&buf, nil)))

		logger.With("phone", "512-555-0134").Info("merging record")

		if strings.Contains(buf.String(), "555-0134") {
			t.Errorf("expected phone masked, got %q", buf.String())
		}
	})
}

// TestNewLogger tests the verbose level switch.
func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	quiet := NewLogger(&buf, false)
	quiet.Info("should be suppressed")
	if buf.Len() != 0 {
		t.Errorf("expected info suppressed at warn level, got %q", buf.String())
	}

	verbose := NewLogger(&buf, true)
	verbose.Debug("should appear")
	if buf.Len() == 0 {
		t.Error("expected debug output in verbose mode")
	}
}
