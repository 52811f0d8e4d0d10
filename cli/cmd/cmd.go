package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// kongVar returns the kong variable with the given identifier.
func kongVar(ctx context.Context, id string) (string, bool) {
	ktx := kongContextFrom(ctx)
	if ktx == nil || ktx.Model == nil {
		return "", false
	}

	v, ok := ktx.Model.Vars()[id]

	return v, ok
}

// stdout returns the writer commands print results to.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stdinSource is the special source name for reading from stdin.
const stdinSource = "-"

// readSource returns the content of the named file, or of stdin for "-".
func readSource(name string) (string, error) {
	var (
		buf []byte
		err error
	)

	if name == stdinSource {
		buf, err = io.ReadAll(os.Stdin)
	} else {
		buf, err = os.ReadFile(name)
	}

	if err != nil {
		return "", ErrReadSource.With(slog.String("file", name)).Wrap(err)
	}

	return string(buf), nil
}

// isFile reports whether name is an existing regular file.
func isFile(name string) bool {
	info, err := os.Stat(name)

	return err == nil && info.Mode().IsRegular()
}
