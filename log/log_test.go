package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func plain(buf *bytes.Buffer, opts ...Option) Logger {
	return Make(buf, append([]Option{WithTimeLayout("none"), WithPretty(false)}, opts...)...)
}

func decode(t *testing.T, b []byte) map[string]any {
	t.Helper()

	var result map[string]any

	err := json.Unmarshal(b, &result)
	if err != nil {
		t.Fatalf("failed to parse JSON output %q: %v", b, err)
	}

	return result
}

func TestLogger_Make_Defaults(t *testing.T) {
	logger := Make(nil)

	if logger.Level() != DefaultLevel {
		t.Errorf("expected level %v, got %v", DefaultLevel, logger.Level())
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("expected format %v, got %v", DefaultFormat, logger.Format())
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name    string
		logFunc func(Logger, string, ...slog.Attr)
		level   string
		min     Level
		logged  bool
	}{
		{"trace at trace", (Logger).Trace, "TRACE", LevelTrace, true},
		{"trace at debug", (Logger).Trace, "TRACE", LevelDebug, false},
		{"debug at debug", (Logger).Debug, "DEBUG", LevelDebug, true},
		{"debug at info", (Logger).Debug, "DEBUG", LevelInfo, false},
		{"info at info", (Logger).Info, "INFO", LevelInfo, true},
		{"info at warn", (Logger).Info, "INFO", LevelWarn, false},
		{"warn at warn", (Logger).Warn, "WARN", LevelWarn, true},
		{"warn at error", (Logger).Warn, "WARN", LevelError, false},
		{"error at error", (Logger).Error, "ERROR", LevelError, true},
		{"error at trace", (Logger).Error, "ERROR", LevelTrace, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.logFunc(plain(&buf, WithLevel(tt.min), WithFormat(FormatJSON)), "message")

			if !tt.logged {
				if buf.Len() > 0 {
					t.Errorf("expected no output, got %q", buf.String())
				}

				return
			}

			result := decode(t, buf.Bytes())
			if result[slog.LevelKey] != tt.level {
				t.Errorf("expected level %q, got %v", tt.level, result[slog.LevelKey])
			}
		})
	}
}

func TestLogger_Formats(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer

		plain(&buf, WithFormat(FormatJSON)).Info("hello", slog.String("key", "value"))

		result := decode(t, buf.Bytes())
		if result[slog.MessageKey] != "hello" {
			t.Errorf("expected msg %q, got %v", "hello", result[slog.MessageKey])
		}

		if result["key"] != "value" {
			t.Errorf("expected key %q, got %v", "value", result["key"])
		}

		if _, ok := result[slog.TimeKey]; ok {
			t.Error("expected timestamp to be omitted")
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer

		plain(&buf, WithFormat(FormatText)).Info("hello", slog.String("key", "value"))

		want := "level=INFO msg=hello key=value\n"
		if buf.String() != want {
			t.Errorf("expected %q, got %q", want, buf.String())
		}
	})
}

func TestLogger_Caller(t *testing.T) {
	tests := []struct {
		name   string
		enable bool
	}{
		{"enabled", true},
		{"disabled", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			plain(&buf, WithFormat(FormatJSON), WithCaller(tt.enable)).Info("message")

			result := decode(t, buf.Bytes())

			src, ok := result[slog.SourceKey].(map[string]any)
			if ok != tt.enable {
				t.Fatalf("expected source present=%v, got %v", tt.enable, result[slog.SourceKey])
			}

			if ok && !strings.HasSuffix(src["file"].(string), "log_test.go") {
				t.Errorf("expected caller in log_test.go, got %v", src["file"])
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer

	logger := plain(&buf, WithFormat(FormatJSON)).
		With(slog.String("component", "render")).
		WithGroup("req")

	logger.Info("handled", slog.Int("status", 200))

	result := decode(t, buf.Bytes())
	if result["component"] != "render" {
		t.Errorf("expected component attribute, got %v", result)
	}

	group, ok := result["req"].(map[string]any)
	if !ok || group["status"] != float64(200) {
		t.Errorf("expected grouped status attribute, got %v", result["req"])
	}
}

func TestLogger_Wrap(t *testing.T) {
	var first, second bytes.Buffer

	base := plain(&first, WithLevel(LevelError))
	wrapped := base.Wrap(WithOutput(&second), WithLevel(LevelDebug))

	base.Info("dropped")
	wrapped.Debug("kept")

	if first.Len() > 0 {
		t.Errorf("expected base logger to stay at error level, got %q", first.String())
	}

	if !strings.Contains(second.String(), "kept") {
		t.Errorf("expected wrapped logger output, got %q", second.String())
	}

	if base.Level() != LevelError || wrapped.Level() != LevelDebug {
		t.Errorf("unexpected levels base=%v wrapped=%v", base.Level(), wrapped.Level())
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var logger Logger

	logger.Trace("ignored")
	logger.Error("ignored", slog.String("k", "v"))
	logger.InfoContext(context.Background(), "ignored")

	if got := logger.With(slog.String("k", "v")); got.Logger != nil {
		t.Error("expected With on zero value to stay zero")
	}

	if logger.Level() != DefaultLevel || logger.Format() != DefaultFormat {
		t.Error("expected zero value to report defaults")
	}

	if Discard().Logger != nil {
		t.Error("expected Discard to return the zero value")
	}
}

func TestLogger_ContextMethods(t *testing.T) {
	type key struct{}

	ctx := context.WithValue(context.Background(), key{}, "id")

	tests := []struct {
		name    string
		logFunc func(Logger, context.Context, string, ...slog.Attr)
		level   string
	}{
		{"trace", (Logger).TraceContext, "TRACE"},
		{"debug", (Logger).DebugContext, "DEBUG"},
		{"info", (Logger).InfoContext, "INFO"},
		{"warn", (Logger).WarnContext, "WARN"},
		{"error", (Logger).ErrorContext, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.logFunc(plain(&buf, WithLevel(LevelTrace), WithFormat(FormatJSON)), ctx, "message")

			result := decode(t, buf.Bytes())
			if result[slog.LevelKey] != tt.level {
				t.Errorf("expected level %q, got %v", tt.level, result[slog.LevelKey])
			}
		})
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func TestLogger_Concurrent(t *testing.T) {
	out := &syncBuffer{}
	logger := Make(out, WithFormat(FormatJSON), WithPretty(false))

	var wg sync.WaitGroup

	for i := range 20 {
		wg.Go(func() {
			logger.With(slog.Int("worker", i)).Info("message")
		})
	}

	wg.Wait()

	lines := strings.Split(strings.TrimSpace(out.buf.String()), "\n")
	if len(lines) != 20 {
		t.Errorf("expected 20 lines, got %d", len(lines))
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	logger := Make(&bytes.Buffer{}, WithFormat(FormatJSON), WithPretty(false))

	for b.Loop() {
		logger.Info("benchmark message", slog.Int("n", 1))
	}
}

func BenchmarkLogger_Info_Caller(b *testing.B) {
	logger := Make(&bytes.Buffer{}, WithFormat(FormatJSON), WithPretty(false), WithCaller(true))

	for b.Loop() {
		logger.Info("benchmark message")
	}
}
