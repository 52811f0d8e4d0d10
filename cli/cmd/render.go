package cmd

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/ardnew/mustache/log"
)

// Render renders one template against the loaded data.
type Render struct {
	Output string `help:"Write output to FILE atomically instead of stdout" placeholder:"FILE" short:"o" type:"path"`

	Name string `arg:"" default:"-" help:"Template name, template file, or '-' for stdin"`
}

// Run executes the render command.
func (c *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts := optionsFrom(ctx)

	data, err := opts.data(ctx)
	if err != nil {
		return err
	}

	t, closeRepo, err := opts.template(ctx, c.Name)
	if err != nil {
		return err
	}
	defer closeRepo()

	out, safe, err := t.Render(ctx, data)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "rendered template",
		slog.String("name", t.Name()),
		slog.Int("length", len(out)),
		slog.Bool("html_safe", safe),
	)

	return writeOutput(ctx, c.Output, out)
}

// writeOutput writes out to stdout, or atomically replaces path.
func writeOutput(ctx context.Context, path, out string) error {
	var err error

	if path == "" {
		_, err = io.WriteString(stdout(ctx), out)
	} else {
		err = atomic.WriteFile(path, strings.NewReader(out))
	}

	if err != nil {
		return ErrWriteOutput.With(slog.String("file", path)).Wrap(err)
	}

	return nil
}
