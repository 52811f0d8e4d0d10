package mustache

import (
	"context"
	"log/slog"
	"strings"
)

// frame is an open section on the compiler stack.
type frame struct {
	tok     Token        // opening tag; zero for the root frame
	section *SectionNode // set for sections, inverted sections and blocks
	parent  *ParentNode  // set for partial overrides
	nodes   []Node
}

// add appends a node to the frame. Frames collecting partial overrides keep
// only blocks, including blocks nested in sections, and a later block
// replaces an earlier one with the same name.
func (f *frame) add(n Node) {
	if f.parent != nil {
		f.addOverrides(n)

		return
	}

	if t, ok := n.(*TextNode); ok && len(f.nodes) > 0 {
		if last, ok := f.nodes[len(f.nodes)-1].(*TextNode); ok {
			last.Text += t.Text

			return
		}
	}

	f.nodes = append(f.nodes, n)
}

// addOverrides registers the blocks in nodes with the frame's parent tag.
// Sections are searched in order; nested parent tags own their blocks.
func (f *frame) addOverrides(nodes ...Node) {
	for _, n := range nodes {
		s, ok := n.(*SectionNode)
		if !ok {
			continue
		}

		if s.Type == TagBlock {
			f.parent.Blocks[s.Name] = s

			continue
		}

		f.addOverrides(s.Children...)
	}
}

// close finishes the frame given its closing tag.
func (f *frame) close(source string, end Token) Node {
	if f.parent != nil {
		return f.parent
	}

	f.section.Children = f.nodes
	f.section.Inner = source[f.tok.End:end.Start]

	return f.section
}

// compiler builds a tag tree from tokens in a single pass.
type compiler struct {
	source string
	stack  []*frame
}

// compileTokens builds the top-level node sequence of source.
func compileTokens(source string, tokens []Token) ([]Node, error) {
	c := &compiler{
		source: source,
		stack:  []*frame{{}},
	}

	for _, tok := range tokens {
		err := c.consume(tok)
		if err != nil {
			return nil, err
		}
	}

	if n := len(c.stack); n > 1 {
		top := c.stack[n-1]

		return nil, ErrUnclosedSection.
			With(slog.String("name", top.tok.Value)).
			WithPosition(top.tok.Pos)
	}

	return c.stack[0].nodes, nil
}

func (c *compiler) top() *frame {
	return c.stack[len(c.stack)-1]
}

func (c *compiler) push(f *frame) {
	c.stack = append(c.stack, f)
}

func (c *compiler) consume(tok Token) error {
	switch tok.Kind {
	case TokenText:
		c.top().add(&TextNode{Text: tok.Value})

	case TokenVariable, TokenUnescaped:
		expr, err := parseExpression(tok.Value)
		if err != nil {
			return err.WithPosition(tok.Pos)
		}

		c.top().add(&VariableNode{
			Expr:   expr,
			Escape: tok.Kind == TokenVariable,
			Pos:    tok.Pos,
		})

	case TokenSection, TokenInverted:
		expr, err := parseExpression(tok.Value)
		if err != nil {
			return err.WithPosition(tok.Pos)
		}

		typ := TagSection
		if tok.Kind == TokenInverted {
			typ = TagInverted
		}

		c.push(&frame{
			tok: tok,
			section: &SectionNode{
				Type:   typ,
				Expr:   expr,
				Delims: tok.Delims,
				Pos:    tok.Pos,
			},
		})

	case TokenBlock:
		name, err := parseName(tok)
		if err != nil {
			return err
		}

		c.push(&frame{
			tok: tok,
			section: &SectionNode{
				Type:   TagBlock,
				Name:   name,
				Delims: tok.Delims,
				Pos:    tok.Pos,
			},
		})

	case TokenPartial:
		name, err := parseName(tok)
		if err != nil {
			return err
		}

		c.top().add(&PartialNode{Name: name, Indent: tok.Indent, Pos: tok.Pos})

	case TokenParent:
		name, err := parseName(tok)
		if err != nil {
			return err
		}

		c.push(&frame{
			tok: tok,
			parent: &ParentNode{
				Name:   name,
				Blocks: make(map[string]*SectionNode),
				Pos:    tok.Pos,
			},
		})

	case TokenClose:
		return c.close(tok)

	case TokenComment, TokenDelimiters:
		// consumed by the lexer
	}

	return nil
}

// close pops the open frame named by tok. An empty name closes whatever
// section is open.
func (c *compiler) close(tok Token) error {
	if len(c.stack) == 1 {
		return ErrUnmatchedSection.
			With(slog.String("expected", ""), slog.String("found", tok.Value)).
			WithPosition(tok.Pos)
	}

	top := c.top()

	if tok.Value != "" && sectionName(tok.Value) != sectionName(top.tok.Value) {
		return ErrUnmatchedSection.
			With(
				slog.String("expected", top.tok.Value),
				slog.String("found", tok.Value),
			).
			WithPosition(tok.Pos)
	}

	c.stack = c.stack[:len(c.stack)-1]
	c.top().add(top.close(c.source, tok))

	return nil
}

// sectionName normalizes a tag body for open/close comparison.
func sectionName(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func parseName(tok Token) (string, error) {
	if tok.Value == "" {
		return "", ErrEmptyExpression.
			With(slog.String("tag", tok.Kind.String())).
			WithPosition(tok.Pos)
	}

	return tok.Value, nil
}

// Compile compiles template source into an immutable [Template].
func Compile(ctx context.Context, source string, opts ...Option) (*Template, error) {
	o := makeOptions(opts...)

	o.logger.TraceContext(
		ctx,
		"compile start",
		slog.String("name", o.name),
		slog.Int("source_length", len(source)),
		slog.String("delimiters", o.delims.String()),
	)

	tokens, err := Tokenize(source, o.delims)
	if err != nil {
		return nil, err
	}

	o.logger.TraceContext(
		ctx,
		"tokenized",
		slog.Int("token_count", len(tokens)),
	)

	nodes, err := compileTokens(source, tokens)
	if err != nil {
		return nil, err
	}

	o.logger.TraceContext(
		ctx,
		"compile complete",
		slog.String("name", o.name),
		slog.Int("node_count", len(nodes)),
	)

	return &Template{
		name:     o.name,
		source:   source,
		nodes:    nodes,
		repo:     o.repo,
		maxDepth: o.maxDepth,
		logger:   o.logger,
	}, nil
}

// MustCompile is like [Compile] but panics if the source cannot be compiled.
func MustCompile(source string, opts ...Option) *Template {
	t, err := Compile(context.Background(), source, opts...)
	if err != nil {
		panic(err)
	}

	return t
}
