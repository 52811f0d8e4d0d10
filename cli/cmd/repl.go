package cmd

import (
	"context"

	"github.com/ardnew/mustache"
	"github.com/ardnew/mustache/cli/cmd/repl"
	"github.com/ardnew/mustache/log"
)

// Repl starts an interactive session that renders each line as a template.
type Repl struct{}

// Run executes the repl command.
func (c *Repl) Run(ctx context.Context) error {
	opts := optionsFrom(ctx)

	data, err := opts.data(ctx)
	if err != nil {
		return err
	}

	delims := mustache.DefaultDelimiters
	if opts.Delims != "" {
		delims, err = mustache.ParseDelimiters(opts.Delims)
		if err != nil {
			return err
		}
	}

	r, closeRepo, err := opts.repository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	cacheDir, _ := kongVar(ctx, CacheIdentifier)

	return repl.Run(ctx, r, data, delims, cacheDir, log.Default())
}
