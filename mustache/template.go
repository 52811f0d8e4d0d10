package mustache

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/mustache/log"
)

// Template is a compiled template. It is immutable and may be rendered
// concurrently against different data.
type Template struct {
	name     string
	source   string
	nodes    []Node
	repo     Repository
	logger   log.Logger
	maxDepth int
}

// Name returns the name given with [WithName].
func (t *Template) Name() string { return t.name }

// Source returns the source the template was compiled from.
func (t *Template) Source() string { return t.source }

// Nodes returns the top-level nodes of the tag tree. The nodes are shared
// with the template and must not be modified.
func (t *Template) Nodes() []Node { return slices.Clone(t.nodes) }

// Repository returns the repository partials are resolved from.
func (t *Template) Repository() Repository { return t.repo }

// Named returns a copy of t with a different name. The copy shares the tag
// tree with t.
func (t *Template) Named(name string) *Template {
	c := *t
	c.name = name

	return &c
}

// Render renders the template with data as the only context frame and
// reports whether the output is HTML-safe. A nil data renders against an
// empty context.
func (t *Template) Render(ctx context.Context, data any) (string, bool, error) {
	var c *Context
	if data != nil {
		c = NewContext(data)
	}

	return t.RenderContext(ctx, c)
}

// RenderContext renders the template against c.
func (t *Template) RenderContext(ctx context.Context, c *Context) (string, bool, error) {
	r := &renderer{
		ctx:      ctx,
		repo:     t.repo,
		logger:   t.logger,
		maxDepth: t.maxDepth,
	}

	if r.maxDepth <= 0 {
		r.maxDepth = DefaultMaxDepth
	}

	t.logger.TraceContext(
		ctx,
		"render start",
		slog.String("name", t.name),
		slog.Int("frames", c.Len()),
	)

	var sb strings.Builder

	safe, err := r.renderNodes(&sb, c, t.nodes)
	if err != nil {
		t.logger.DebugContext(
			ctx,
			"render failed",
			slog.String("name", t.name),
			slog.Any("error", err),
		)

		return "", false, err
	}

	t.logger.TraceContext(
		ctx,
		"render complete",
		slog.String("name", t.name),
		slog.Int("output_length", sb.Len()),
		slog.Bool("html_safe", safe),
	)

	return sb.String(), safe, nil
}

// Execute renders the template with data and writes the output to w.
// Nothing is written if rendering fails.
func (t *Template) Execute(ctx context.Context, w io.Writer, data any) error {
	out, _, err := t.Render(ctx, data)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, out)

	return err
}
