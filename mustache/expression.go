package mustache

import (
	"log/slog"
	"strings"
	"unicode"
)

// filterSeparator separates an expression from its filters: {{ name | f }}.
const filterSeparator = "|"

// Expression is a dotted identifier path with an optional filter chain.
//
// An empty Path denotes the implicit iterator ".", the value of the
// innermost context frame. Scoped expressions (written with a leading dot,
// as in ".name") resolve against the innermost frame only.
type Expression struct {
	Path    []string
	Filters []Expression
	Scoped  bool
}

// ParseExpression parses the body of a variable or section tag.
func ParseExpression(raw string) (Expression, error) {
	e, err := parseExpression(raw)
	if err != nil {
		return Expression{}, err
	}

	return e, nil
}

func parseExpression(raw string) (Expression, *Error) {
	parts := strings.Split(raw, filterSeparator)

	expr, err := parsePath(parts[0])
	if err != nil {
		return Expression{}, err.With(slog.String("expression", raw))
	}

	for _, part := range parts[1:] {
		filter, err := parsePath(part)
		if err != nil {
			return Expression{}, err.With(slog.String("expression", raw))
		}

		if filter.IsImplicit() {
			return Expression{}, ErrInvalidExpression.With(
				slog.String("expression", raw),
				slog.String("filter", strings.TrimSpace(part)),
			)
		}

		expr.Filters = append(expr.Filters, filter)
	}

	return expr, nil
}

// parsePath parses a single dotted path without filters.
func parsePath(raw string) (Expression, *Error) {
	s := strings.TrimSpace(raw)

	switch s {
	case "":
		return Expression{}, ErrEmptyExpression

	case ".":
		return Expression{}, nil
	}

	var expr Expression

	if strings.HasPrefix(s, ".") {
		expr.Scoped = true
		s = s[1:]
	}

	expr.Path = strings.Split(s, ".")

	for _, seg := range expr.Path {
		if seg == "" || strings.ContainsFunc(seg, invalidIdentifierRune) {
			return Expression{}, ErrInvalidExpression.With(
				slog.String("segment", seg),
			)
		}
	}

	return expr, nil
}

func invalidIdentifierRune(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune("{}|=#^/!<>$&", r)
}

// IsImplicit reports whether the expression is the implicit iterator ".".
func (e Expression) IsImplicit() bool {
	return len(e.Path) == 0
}

// String returns the expression in template syntax.
func (e Expression) String() string {
	var sb strings.Builder

	switch {
	case e.IsImplicit():
		sb.WriteByte('.')

	case e.Scoped:
		sb.WriteByte('.')

		fallthrough

	default:
		sb.WriteString(strings.Join(e.Path, "."))
	}

	for _, f := range e.Filters {
		sb.WriteString(" " + filterSeparator + " ")
		sb.WriteString(f.String())
	}

	return sb.String()
}
