package mustache

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Error classes. Every variant below belongs to exactly one class, and
// errors.Is reports true for both the variant and its class.
var (
	ErrLex     = NewError("lex error")
	ErrCompile = NewError("compile error")
	ErrRender  = NewError("render error")
)

// Lex errors.
var (
	ErrUnterminatedTag     = ErrLex.Variant("unterminated tag")
	ErrMalformedDelimiters = ErrLex.Variant("malformed delimiter directive")
)

// Compile errors.
var (
	ErrUnmatchedSection  = ErrCompile.Variant("unmatched section")
	ErrUnclosedSection   = ErrCompile.Variant("unclosed section")
	ErrEmptyExpression   = ErrCompile.Variant("empty expression")
	ErrInvalidExpression = ErrCompile.Variant("invalid expression")
)

// Render errors.
var (
	ErrPartialNotFound = ErrRender.Variant("partial not found")
	ErrRecursionLimit  = ErrRender.Variant("recursion limit exceeded")
	ErrLambda          = ErrRender.Variant("lambda failed")
	ErrFilter          = ErrRender.Variant("filter failed")
	ErrFilterNotFound  = ErrRender.Variant("filter not found")
)

// Error represents an error with optional position and structured logging
// attributes. It implements both error and slog.LogValuer interfaces.
//
// Values derived from a sentinel with [Error.Wrap], [Error.With] or
// [Error.WithPosition] still match that sentinel with errors.Is.
type Error struct {
	msg    string
	err    error  // Wrapped error (for errors.Unwrap)
	origin *Error // Sentinel this error was derived from
	class  *Error // Class sentinel, nil for classes themselves
	pos    Position
	attrs  []slog.Attr
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.origin = e

	return e
}

// Variant creates a new sentinel Error belonging to the receiver's class.
func (e *Error) Variant(msg string) *Error {
	v := NewError(msg)
	v.class = e.origin

	return v
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	e := &Error{err: err}
	e.origin = e

	return e
}

// Error implements the error interface.
//
// The message is built as "<msg> <key=value>... at line L, column C: <err>",
// omitting each part that is unset.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(e.msg)

	for _, a := range e.attrs {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(a.Key)
		sb.WriteByte('=')
		sb.WriteString(strconv.Quote(a.Value.String()))
	}

	if e.pos.Line > 0 {
		sb.WriteString(" at ")
		sb.WriteString(e.pos.String())
	}

	if e.err != nil {
		if sb.Len() > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(e.err.Error())
	}

	return sb.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel or class this error derives
// from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.origin == nil {
		return false
	}

	return t.origin == e.origin || (e.class != nil && t.origin == e.class)
}

// Position returns the source position attached to the error, if any.
func (e *Error) Position() Position { return e.pos }

// Attr returns the value of the named attribute.
func (e *Error) Attr(key string) (slog.Value, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}

	return slog.Value{}, false
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.class != nil {
		attrs = append(attrs, slog.String("class", e.class.msg))
	}

	if e.pos.Line > 0 {
		attrs = append(attrs,
			slog.Int("line", e.pos.Line),
			slog.Int("column", e.pos.Column),
		)
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.clone()
	c.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(c.attrs, e.attrs)
	copy(c.attrs[len(e.attrs):], attrs)

	return c
}

// WithPosition attaches a source position to the error.
func (e *Error) WithPosition(pos Position) *Error {
	c := e.clone()
	c.pos = pos

	return c
}

func (e *Error) clone() *Error {
	return &Error{
		msg:    e.msg,
		err:    e.err,
		origin: e.origin,
		class:  e.class,
		pos:    e.pos,
		attrs:  e.attrs, // Share attrs
	}
}
