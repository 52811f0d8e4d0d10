package mustache

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ardnew/mustache/log"
)

// Repository resolves partial templates by name. A template holds its
// repository by reference only; it neither owns nor caches it.
//
// A repository that cannot find a template should return an error matching
// [ErrPartialNotFound].
type Repository interface {
	Partial(name string) (*Template, error)
}

// renderer holds the state of a single render call. It is not safe for
// concurrent use; every call to [Template.RenderContext] creates its own.
type renderer struct {
	ctx       context.Context
	repo      Repository
	logger    log.Logger
	overrides []map[string]*SectionNode // one layer per enclosing parent tag
	depth     int
	maxDepth  int
}

// enter accounts for one level of nested rendering.
func (r *renderer) enter(pos Position) error {
	if r.depth >= r.maxDepth {
		return ErrRecursionLimit.
			With(slog.Int("max_depth", r.maxDepth)).
			WithPosition(pos)
	}

	r.depth++

	return nil
}

func (r *renderer) leave() { r.depth-- }

// renderNodes renders nodes in order and reports whether all of their
// output is HTML-safe.
func (r *renderer) renderNodes(
	sb *strings.Builder,
	c *Context,
	nodes []Node,
) (bool, error) {
	safe := true

	for _, n := range nodes {
		ok, err := r.renderNode(sb, c, n)
		if err != nil {
			return false, err
		}

		safe = safe && ok
	}

	return safe, nil
}

func (r *renderer) renderNode(
	sb *strings.Builder,
	c *Context,
	n Node,
) (bool, error) {
	switch n := n.(type) {
	case *TextNode:
		sb.WriteString(n.Text)

		return true, nil

	case *VariableNode:
		return r.renderVariable(sb, c, n)

	case *SectionNode:
		switch n.Type {
		case TagBlock:
			return r.renderBlock(sb, c, n)

		case TagInverted:
			return r.renderInverted(sb, c, n)

		default:
			return r.renderSection(sb, c, n)
		}

	case *PartialNode:
		return r.renderPartial(sb, c, n.Name, n.Indent, n.Pos)

	case *ParentNode:
		r.overrides = append(r.overrides, n.Blocks)
		defer func() { r.overrides = r.overrides[:len(r.overrides)-1] }()

		return r.renderPartial(sb, c, n.Name, "", n.Pos)

	default:
		panic("mustache: unknown node type")
	}
}

// evaluate resolves e and applies its filters.
func (r *renderer) evaluate(c *Context, e Expression, pos Position) (any, bool, error) {
	v, found := c.Resolve(e)
	if len(e.Filters) == 0 {
		return v, found, nil
	}

	v, found, err := applyFilters(c, e, v, found)
	if err != nil {
		return nil, false, err.WithPosition(pos)
	}

	return v, found, nil
}

func (r *renderer) renderVariable(
	sb *strings.Builder,
	c *Context,
	n *VariableNode,
) (bool, error) {
	v, found, err := r.evaluate(c, n.Expr, n.Pos)
	if err != nil {
		return false, err
	}

	if !found {
		return true, nil
	}

	var (
		out  string
		safe bool
	)

	switch x := v.(type) {
	case Renderable:
		out, safe, err = x.RenderContent(&Tag{typ: TagVariable, r: r}, c)
		if err != nil {
			return false, lambdaError(err, n.Pos)
		}

	case func() string:
		return r.renderVariableLambda(sb, c, x(), n)

	case func() (string, error):
		s, lerr := x()
		if lerr != nil {
			return false, lambdaError(lerr, n.Pos)
		}

		return r.renderVariableLambda(sb, c, s, n)

	default:
		out, safe = stringify(v)
	}

	out, safe = escape(out, safe, n.Escape)
	sb.WriteString(out)

	return safe, nil
}

// renderVariableLambda renders the text returned by a variable lambda as a
// template with the default delimiters. An escaping tag escapes the literal
// text of the template, so interpolations inside it are escaped exactly once.
func (r *renderer) renderVariableLambda(
	sb *strings.Builder,
	c *Context,
	source string,
	n *VariableNode,
) (bool, error) {
	err := r.enter(n.Pos)
	if err != nil {
		return false, err
	}
	defer r.leave()

	nodes, err := r.compileSource(source, DefaultDelimiters, n.Pos)
	if err != nil {
		return false, err
	}

	if !n.Escape {
		_, err = r.renderNodes(sb, c, nodes)

		// Literal lambda text is host markup and is never trusted.
		return false, err
	}

	return r.renderNodes(sb, c, escapeText(nodes))
}

// escapeText returns a copy of nodes with every literal text node, including
// those nested in sections and overrides, HTML-escaped.
func escapeText(nodes []Node) []Node {
	out := make([]Node, len(nodes))

	for i, n := range nodes {
		switch n := n.(type) {
		case *TextNode:
			out[i] = &TextNode{Text: EscapeHTML(n.Text)}

		case *SectionNode:
			s := *n
			s.Children = escapeText(n.Children)
			out[i] = &s

		case *ParentNode:
			p := *n
			p.Blocks = make(map[string]*SectionNode, len(n.Blocks))

			for name, b := range n.Blocks {
				s := *b
				s.Children = escapeText(b.Children)
				p.Blocks[name] = &s
			}

			out[i] = &p

		default:
			out[i] = n
		}
	}

	return out
}

func (r *renderer) renderSection(
	sb *strings.Builder,
	c *Context,
	n *SectionNode,
) (bool, error) {
	v, found, err := r.evaluate(c, n.Expr, n.Pos)
	if err != nil {
		return false, err
	}

	if !found {
		return true, nil
	}

	switch x := v.(type) {
	case Renderable:
		out, safe, err := x.RenderContent(&Tag{typ: n.Type, section: n, r: r}, c)
		if err != nil {
			return false, lambdaError(err, n.Pos)
		}

		sb.WriteString(out)

		return safe, nil

	case func(string) string:
		return r.renderSource(sb, c, x(n.Inner), n.Delims, n.Pos)

	case func(string) (string, error):
		s, lerr := x(n.Inner)
		if lerr != nil {
			return false, lambdaError(lerr, n.Pos)
		}

		return r.renderSource(sb, c, s, n.Delims, n.Pos)
	}

	if seq, ok := sequence(v); ok {
		safe := true

		for _, item := range seq {
			ok, err := r.renderNodes(sb, c.Push(item), n.Children)
			if err != nil {
				return false, err
			}

			safe = safe && ok
		}

		return safe, nil
	}

	if !truthy(v, true) {
		return true, nil
	}

	return r.renderNodes(sb, c.Push(v), n.Children)
}

func (r *renderer) renderInverted(
	sb *strings.Builder,
	c *Context,
	n *SectionNode,
) (bool, error) {
	v, found, err := r.evaluate(c, n.Expr, n.Pos)
	if err != nil {
		return false, err
	}

	if truthy(v, found) {
		return true, nil
	}

	return r.renderNodes(sb, c, n.Children)
}

// renderBlock renders the override of block n, or n itself when no
// enclosing parent tag overrides it. Layers are visited from the innermost
// outward, so the override of the most derived template wins.
func (r *renderer) renderBlock(
	sb *strings.Builder,
	c *Context,
	n *SectionNode,
) (bool, error) {
	body := n

	for i := len(r.overrides) - 1; i >= 0; i-- {
		if o, ok := r.overrides[i][n.Name]; ok {
			body = o
		}
	}

	return r.renderNodes(sb, c, body.Children)
}

func (r *renderer) renderPartial(
	sb *strings.Builder,
	c *Context,
	name, prefix string,
	pos Position,
) (bool, error) {
	attr := slog.String("name", name)

	if r.repo == nil {
		return false, ErrPartialNotFound.
			With(attr, slog.String("reason", "no repository")).
			WithPosition(pos)
	}

	t, err := r.repo.Partial(name)

	switch {
	case errors.Is(err, ErrPartialNotFound), err == nil && t == nil:
		return false, ErrPartialNotFound.With(attr).WithPosition(pos)

	case err != nil:
		return false, WrapError(err).With(slog.String("partial", name))
	}

	err = r.enter(pos)
	if err != nil {
		return false, err
	}
	defer r.leave()

	r.logger.TraceContext(
		r.ctx,
		"render partial",
		attr,
		slog.Int("depth", r.depth),
		slog.Int("overrides", len(r.overrides)),
	)

	// Partials resolve their own partials through the repository that
	// compiled them.
	if t.repo != nil {
		saved := r.repo
		r.repo = t.repo

		defer func() { r.repo = saved }()
	}

	if prefix == "" {
		return r.renderNodes(sb, c, t.nodes)
	}

	var sub strings.Builder

	safe, err := r.renderNodes(&sub, c, t.nodes)
	if err != nil {
		return false, err
	}

	sb.WriteString(indent(sub.String(), prefix))

	return safe, nil
}

// renderSource compiles source with delims and renders it against c as one
// level of nested rendering.
func (r *renderer) renderSource(
	sb *strings.Builder,
	c *Context,
	source string,
	delims Delimiters,
	pos Position,
) (bool, error) {
	err := r.enter(pos)
	if err != nil {
		return false, err
	}
	defer r.leave()

	nodes, err := r.compileSource(source, delims, pos)
	if err != nil {
		return false, err
	}

	return r.renderNodes(sb, c, nodes)
}

// compileSource compiles the text produced by a lambda.
func (r *renderer) compileSource(
	source string,
	delims Delimiters,
	pos Position,
) ([]Node, error) {
	tokens, err := Tokenize(source, delims)
	if err != nil {
		return nil, ErrLambda.Wrap(err).WithPosition(pos)
	}

	nodes, err := compileTokens(source, tokens)
	if err != nil {
		return nil, ErrLambda.Wrap(err).WithPosition(pos)
	}

	r.logger.TraceContext(
		r.ctx,
		"render lambda",
		slog.Int("depth", r.depth),
		slog.Int("source_length", len(source)),
	)

	return nodes, nil
}

// lambdaError reports a failure of host code invoked during rendering.
// Render errors raised by nested renders pass through unchanged.
func lambdaError(err error, pos Position) error {
	if errors.Is(err, ErrRender) {
		return err
	}

	return ErrLambda.Wrap(err).WithPosition(pos)
}
