package mustache

import "github.com/ardnew/mustache/log"

// DefaultMaxDepth is the default ceiling on nested partial renders and
// lambda recompiles within one render call.
const DefaultMaxDepth = 100

// Option configures template compilation and rendering.
type Option func(*options)

type options struct {
	name     string
	delims   Delimiters
	repo     Repository
	maxDepth int
	logger   log.Logger
}

func makeOptions(opts ...Option) options {
	o := options{
		delims:   DefaultDelimiters,
		maxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithName names the template in log messages and tree dumps.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithDelimiters sets the delimiters the template starts with.
// Invalid delimiters are ignored.
func WithDelimiters(d Delimiters) Option {
	return func(o *options) {
		if validDelimiter(d.Open) && validDelimiter(d.Close) {
			o.delims = d
		}
	}
}

// WithRepository sets the repository used to resolve partials at render
// time. The template does not own the repository.
func WithRepository(r Repository) Option {
	return func(o *options) { o.repo = r }
}

// WithMaxDepth sets the recursion ceiling. Values below 1 are ignored.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithLogger sets the logger for compile and render tracing.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}
