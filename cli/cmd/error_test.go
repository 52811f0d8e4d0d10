package cmd

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestError(t *testing.T) {
	err := ErrWriteConfig.With(slog.String("file", "f")).Wrap(io.EOF)

	if !errors.Is(err, ErrWriteConfig) {
		t.Error("derived error does not match its sentinel")
	}

	if errors.Is(err, ErrReadData) {
		t.Error("derived error matches an unrelated sentinel")
	}

	if !errors.Is(err, io.EOF) {
		t.Error("wrapped error not reachable")
	}

	if got, want := err.Error(), "write configuration file: EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if len(ErrWriteConfig.attrs) != 0 || ErrWriteConfig.err != nil {
		t.Error("With or Wrap mutated the sentinel")
	}

	attrs := err.LogValue().Group()
	if len(attrs) != 3 || attrs[0].Key != "error" || attrs[1].Key != "cause" || attrs[2].Key != "file" {
		t.Errorf("LogValue() = %v", attrs)
	}
}
