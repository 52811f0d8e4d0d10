package repo

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// Loader fetches the source text of a template by name. A Loader that has
// no template with the given name returns an error matching [ErrNotFound].
type Loader interface {
	Load(ctx context.Context, name string) (string, error)
}

// Lister is implemented by loaders that can enumerate their templates.
type Lister interface {
	Names(ctx context.Context) ([]string, error)
}

// LoaderFunc adapts a function to the [Loader] interface.
type LoaderFunc func(ctx context.Context, name string) (string, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, name string) (string, error) {
	return f(ctx, name)
}

// MapLoader serves templates from memory. It is safe for concurrent use.
type MapLoader struct {
	mu      sync.RWMutex
	sources map[string]string
}

// NewMapLoader returns a MapLoader holding a copy of sources.
func NewMapLoader(sources map[string]string) *MapLoader {
	return &MapLoader{sources: maps.Clone(sources)}
}

// Load implements [Loader].
func (l *MapLoader) Load(_ context.Context, name string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	src, ok := l.sources[name]
	if !ok {
		return "", ErrNotFound.With(slog.String("name", name))
	}

	return src, nil
}

// Names implements [Lister].
func (l *MapLoader) Names(context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return slices.Sorted(maps.Keys(l.sources)), nil
}

// Store adds or replaces a template. A [Repository] that already cached
// the name keeps its compiled copy until cleared.
func (l *MapLoader) Store(_ context.Context, name, source string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sources == nil {
		l.sources = make(map[string]string)
	}

	l.sources[name] = source

	return nil
}

// Chain returns a Loader that tries each loader in order and returns the
// first source found. Errors other than [ErrNotFound] stop the search.
// The result is also a [Lister] over every loader that is one.
func Chain(loaders ...Loader) Loader {
	return chain(slices.Clone(loaders))
}

type chain []Loader

func (c chain) Load(ctx context.Context, name string) (string, error) {
	for _, l := range c {
		src, err := l.Load(ctx, name)
		if err == nil {
			return src, nil
		}

		if !isNotFound(err) {
			return "", err
		}
	}

	return "", ErrNotFound.With(slog.String("name", name))
}

// Names returns the sorted union of the names listed by each loader.
func (c chain) Names(ctx context.Context) ([]string, error) {
	var names []string

	for _, l := range c {
		lister, ok := l.(Lister)
		if !ok {
			continue
		}

		n, err := lister.Names(ctx)
		if err != nil {
			return nil, err
		}

		names = append(names, n...)
	}

	slices.Sort(names)

	return slices.Compact(names), nil
}
