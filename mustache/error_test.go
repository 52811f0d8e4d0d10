package mustache

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestError_Is(t *testing.T) {
	derived := ErrPartialNotFound.
		With(slog.String("name", "x")).
		WithPosition(Position{Line: 2, Column: 3})

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{name: "variant matches itself", err: derived, target: ErrPartialNotFound, want: true},
		{name: "variant matches class", err: derived, target: ErrRender, want: true},
		{name: "variant does not match sibling", err: derived, target: ErrRecursionLimit, want: false},
		{name: "variant does not match other class", err: derived, target: ErrCompile, want: false},
		{name: "class does not match variant", err: ErrRender, target: ErrPartialNotFound, want: false},
		{name: "wrapped cause", err: ErrLambda.Wrap(io.EOF), target: io.EOF, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  ErrUnclosedSection,
			want: "unclosed section",
		},
		{
			name: "attributes and position",
			err: ErrUnclosedSection.
				With(slog.String("name", "a")).
				WithPosition(Position{Line: 3, Column: 5}),
			want: `unclosed section name="a" at line 3, column 5`,
		},
		{
			name: "wrapped cause",
			err:  ErrLambda.Wrap(io.EOF),
			want: "lambda failed: EOF",
		},
		{
			name: "wrapped standard error",
			err:  WrapError(io.EOF),
			want: "EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestError_WithDoesNotMutate(t *testing.T) {
	base := ErrFilter.With(slog.String("a", "1"))
	_ = base.With(slog.String("b", "2"))

	if _, ok := base.Attr("b"); ok {
		t.Error("With modified its receiver")
	}

	if _, ok := ErrFilter.Attr("a"); ok {
		t.Error("With modified the sentinel")
	}
}

func TestError_LogValue(t *testing.T) {
	err := ErrUnmatchedSection.
		With(slog.String("found", "b")).
		WithPosition(Position{Line: 1, Column: 2})

	v := err.LogValue()
	if v.Kind() != slog.KindGroup {
		t.Fatalf("expected group value, got %v", v.Kind())
	}

	got := make(map[string]string)
	for _, a := range v.Group() {
		got[a.Key] = a.Value.String()
	}

	want := map[string]string{
		"error":  "unmatched section",
		"class":  "compile error",
		"line":   "1",
		"column": "2",
		"found":  "b",
	}

	for k, w := range want {
		if got[k] != w {
			t.Errorf("attribute %q: expected %q, got %q", k, w, got[k])
		}
	}
}
