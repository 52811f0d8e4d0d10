package repo

import (
	"context"
	"log/slog"
	"runtime"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/mustache"
	"github.com/ardnew/mustache/log"
)

// Repository loads, compiles, and caches templates by name. It implements
// [mustache.Repository], and every template it compiles resolves partials
// through it. A Repository is safe for concurrent use.
type Repository struct {
	loader      Loader
	compileOpts []mustache.Option
	logger      log.Logger
	ctx         context.Context
	concurrency int

	// entries maps a template name to its *entry.
	entries sync.Map

	// trees maps the xxh3 hash of a source to its *entry, so names with
	// identical sources share one compiled tag tree.
	trees sync.Map
}

// entry is a compile result computed at most once.
type entry struct {
	once sync.Once
	tmpl *mustache.Template
	err  error
}

// New returns a Repository reading sources from loader.
func New(loader Loader, opts ...Option) *Repository {
	r := &Repository{
		loader:      loader,
		ctx:         context.Background(),
		concurrency: runtime.GOMAXPROCS(0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Loader returns the loader the repository reads from.
func (r *Repository) Loader() Loader { return r.loader }

// Template returns the compiled template with the given name, loading and
// compiling it on first use. Failures are not cached.
func (r *Repository) Template(ctx context.Context, name string) (*mustache.Template, error) {
	v, cached := r.entries.LoadOrStore(name, &entry{})
	e := v.(*entry)

	e.once.Do(func() {
		r.logger.TraceContext(ctx, "load template", slog.String("name", name))

		src, err := r.loader.Load(ctx, name)
		if err != nil {
			e.err = err

			return
		}

		e.tmpl, e.err = r.compile(ctx, name, src)
	})

	if e.err != nil {
		r.entries.CompareAndDelete(name, e)

		return nil, e.err
	}

	r.logger.TraceContext(ctx, "template ready",
		slog.String("name", name),
		slog.Bool("cache_hit", cached),
	)

	return e.tmpl, nil
}

// Partial implements [mustache.Repository] using the repository's context.
func (r *Repository) Partial(name string) (*mustache.Template, error) {
	return r.Template(r.ctx, name)
}

// Compile compiles an unnamed template whose partials resolve through the
// repository. Compiled trees are shared with any cached template of
// identical source.
func (r *Repository) Compile(ctx context.Context, source string) (*mustache.Template, error) {
	return r.compile(ctx, "", source)
}

func (r *Repository) compile(ctx context.Context, name, source string) (*mustache.Template, error) {
	hash := xxh3.HashString(source)

	v, shared := r.trees.LoadOrStore(hash, &entry{})
	e := v.(*entry)

	e.once.Do(func() {
		e.tmpl, e.err = mustache.Compile(ctx, source, r.options(name)...)
	})

	r.logger.TraceContext(ctx, "compile lookup",
		slog.String("name", name),
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("shared", shared),
	)

	if e.err != nil {
		r.trees.CompareAndDelete(hash, e)

		return nil, mustache.WrapError(e.err).With(slog.String("template", name))
	}

	// A hash collision must not hand out another source's tree.
	if e.tmpl.Source() != source {
		return mustache.Compile(ctx, source, r.options(name)...)
	}

	return e.tmpl.Named(name), nil
}

func (r *Repository) options(name string) []mustache.Option {
	return append([]mustache.Option{
		mustache.WithName(name),
		mustache.WithRepository(r),
		mustache.WithLogger(r.logger),
	}, r.compileOpts...)
}

// Preload loads and compiles the named templates concurrently, or every
// template the loader lists when no names are given. It returns the first
// error encountered.
func (r *Repository) Preload(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		lister, ok := r.loader.(Lister)
		if !ok {
			return nil
		}

		var err error

		names, err = lister.Names(ctx)
		if err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, name := range names {
		g.Go(func() error {
			_, err := r.Template(ctx, name)

			return err
		})
	}

	return g.Wait()
}

// Clear drops every cached template so the next request reloads it.
func (r *Repository) Clear() {
	r.entries.Clear()
	r.trees.Clear()
}
