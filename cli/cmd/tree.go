package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/mustache"
)

// Tree compiles a template and prints its tag tree.
type Tree struct {
	Native Native `cmd:"" default:"withargs" help:"Print the tree as an indented outline (default)."`
	JSON   JSON   `cmd:""                    help:"Print the tree as JSON."`
	YAML   YAML   `cmd:""                    help:"Print the tree as YAML."`
}

// TreeSource holds the arguments shared by the tree subcommands.
type TreeSource struct {
	Indent int `default:"2" help:"Indent width" short:"i"`

	Source string `arg:"" default:"-" help:"Template file or '-' for stdin" name:"source"`
}

func (s TreeSource) compile(ctx context.Context, format string) (*mustache.Template, error) {
	source, err := readSource(s.Source)
	if err != nil {
		return nil, err
	}

	copts, err := optionsFrom(ctx).compileOptions()
	if err != nil {
		return nil, err
	}

	t, err := mustache.Compile(ctx, source, append(copts, mustache.WithName(s.Source))...)
	if err != nil {
		return nil, mustache.WrapError(err).With(slog.String("format", format))
	}

	return t, nil
}

// Native prints the tag tree as an outline.
type Native struct {
	TreeSource `embed:""`
}

// Run executes the native tree command.
func (c *Native) Run(ctx context.Context) error {
	t, err := c.compile(ctx, "native")
	if err != nil {
		return err
	}

	return t.Format(ctx, stdout(ctx), c.Indent)
}

// JSON prints the tag tree as JSON.
type JSON struct {
	TreeSource `embed:""`
}

// Run executes the json tree command.
func (c *JSON) Run(ctx context.Context) error {
	t, err := c.compile(ctx, "json")
	if err != nil {
		return err
	}

	return t.FormatJSON(ctx, stdout(ctx), c.Indent)
}

// YAML prints the tag tree as YAML.
type YAML struct {
	TreeSource `embed:""`
}

// Run executes the yaml tree command.
func (c *YAML) Run(ctx context.Context) error {
	t, err := c.compile(ctx, "yaml")
	if err != nil {
		return err
	}

	err = t.FormatYAML(ctx, stdout(ctx), c.Indent)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	return nil
}
