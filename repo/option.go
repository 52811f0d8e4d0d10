package repo

import (
	"context"

	"github.com/ardnew/mustache"
	"github.com/ardnew/mustache/log"
)

// Option configures a [Repository].
type Option func(*Repository)

// WithCompileOptions sets options applied to every template the repository
// compiles, after the repository's own name and partial resolution.
func WithCompileOptions(opts ...mustache.Option) Option {
	return func(r *Repository) {
		r.compileOpts = append(r.compileOpts, opts...)
	}
}

// WithLogger sets the logger for load and cache tracing. The logger is also
// handed to every compiled template.
func WithLogger(logger log.Logger) Option {
	return func(r *Repository) { r.logger = logger }
}

// WithContext sets the context used to load partials requested during
// rendering, where no context is passed.
func WithContext(ctx context.Context) Option {
	return func(r *Repository) {
		if ctx != nil {
			r.ctx = ctx
		}
	}
}

// WithConcurrency limits how many templates [Repository.Preload] loads at
// once. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(r *Repository) {
		if n > 0 {
			r.concurrency = n
		}
	}
}
