package mustache

import (
	"log/slog"
)

// Filter transforms a value in an expression such as {{ name | upper }}.
// Filters are resolved by name in the context stack like any other value.
type Filter interface {
	Apply(v any) (any, error)
}

// FilterFunc adapts a function to the [Filter] interface.
type FilterFunc func(v any) (any, error)

// Apply calls f(v).
func (f FilterFunc) Apply(v any) (any, error) { return f(v) }

// asFilter returns the filter behind a resolved value. Plain functions of
// one argument are accepted as filters.
func asFilter(v any) (Filter, bool) {
	switch f := v.(type) {
	case Filter:
		return f, true

	case func(any) (any, error):
		return FilterFunc(f), true

	case func(any) any:
		return FilterFunc(func(v any) (any, error) { return f(v), nil }), true

	default:
		return nil, false
	}
}

// applyFilters evaluates the filter chain of e left to right, starting with
// v. A filtered value always counts as found.
func applyFilters(c *Context, e Expression, v any, found bool) (any, bool, *Error) {
	for _, fe := range e.Filters {
		name := slog.String("filter", fe.String())

		fv, ok := c.Resolve(fe)
		if !ok {
			return nil, false, ErrFilterNotFound.With(name)
		}

		f, ok := asFilter(fv)
		if !ok {
			return nil, false, ErrFilterNotFound.With(
				name,
				slog.String("reason", "value is not a filter"),
			)
		}

		out, err := f.Apply(v)
		if err != nil {
			return nil, false, ErrFilter.Wrap(err).With(name)
		}

		v, found = out, true
	}

	return v, found, nil
}
