package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestPackage_LogFunctions(t *testing.T) {
	var buf bytes.Buffer

	prev := SetDefault(plain(&buf, WithLevel(LevelTrace), WithFormat(FormatJSON)))
	t.Cleanup(func() { SetDefault(prev) })

	ctx := context.Background()

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Trace", Trace, "TRACE"},
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
		{"TraceContext", func(m string, a ...slog.Attr) { TraceContext(ctx, m, a...) }, "TRACE"},
		{"DebugContext", func(m string, a ...slog.Attr) { DebugContext(ctx, m, a...) }, "DEBUG"},
		{"InfoContext", func(m string, a ...slog.Attr) { InfoContext(ctx, m, a...) }, "INFO"},
		{"WarnContext", func(m string, a ...slog.Attr) { WarnContext(ctx, m, a...) }, "WARN"},
		{"ErrorContext", func(m string, a ...slog.Attr) { ErrorContext(ctx, m, a...) }, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("message", slog.String("key", "value"))

			result := decode(t, buf.Bytes())
			if result[slog.LevelKey] != tt.level {
				t.Errorf("expected level %q, got %v", tt.level, result[slog.LevelKey])
			}

			if result["key"] != "value" {
				t.Errorf("expected attribute, got %v", result)
			}
		})
	}
}

func TestPackage_Config(t *testing.T) {
	var buf bytes.Buffer

	prev := SetDefault(plain(&buf))
	t.Cleanup(func() { SetDefault(prev) })

	Config(WithLevel(LevelError))

	Warn("dropped")

	if buf.Len() > 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}

	With(slog.String("k", "v")).Error("kept")

	if !strings.Contains(buf.String(), "k=v") {
		t.Errorf("expected attribute in output, got %q", buf.String())
	}
}
