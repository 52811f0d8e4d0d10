package mustache

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompile_Tree(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Node
	}{
		{
			name:  "text and variables",
			input: "Hi {{name}}, {{{raw}}}",
			want: []Node{
				&TextNode{Text: "Hi "},
				&VariableNode{
					Expr:   Expression{Path: []string{"name"}},
					Escape: true,
					Pos:    Position{Offset: 3, Line: 1, Column: 4},
				},
				&TextNode{Text: ", "},
				&VariableNode{
					Expr: Expression{Path: []string{"raw"}},
					Pos:  Position{Offset: 13, Line: 1, Column: 14},
				},
			},
		},
		{
			name:  "comments merge surrounding text",
			input: "a{{! skip }}b",
			want:  []Node{&TextNode{Text: "ab"}},
		},
		{
			name:  "section with inner source",
			input: "{{#list}}<{{.}}>{{/list}}",
			want: []Node{
				&SectionNode{
					Type: TagSection,
					Expr: Expression{Path: []string{"list"}},
					Children: []Node{
						&TextNode{Text: "<"},
						&VariableNode{
							Expr:   Expression{},
							Escape: true,
							Pos:    Position{Offset: 10, Line: 1, Column: 11},
						},
						&TextNode{Text: ">"},
					},
					Inner:  "<{{.}}>",
					Delims: DefaultDelimiters,
					Pos:    Position{Offset: 0, Line: 1, Column: 1},
				},
			},
		},
		{
			name:  "inverted with anonymous close",
			input: "{{^a}}none{{/}}",
			want: []Node{
				&SectionNode{
					Type:     TagInverted,
					Expr:     Expression{Path: []string{"a"}},
					Children: []Node{&TextNode{Text: "none"}},
					Inner:    "none",
					Delims:   DefaultDelimiters,
					Pos:      Position{Offset: 0, Line: 1, Column: 1},
				},
			},
		},
		{
			name:  "partial",
			input: "{{> footer }}",
			want: []Node{
				&PartialNode{Name: "footer", Pos: Position{Line: 1, Column: 1}},
			},
		},
		{
			name:  "parent keeps only blocks, last wins",
			input: "{{<base}}junk{{$a}}1{{/a}}{{x}}{{$a}}2{{/a}}{{/base}}",
			want: []Node{
				&ParentNode{
					Name: "base",
					Blocks: map[string]*SectionNode{
						"a": {
							Type:     TagBlock,
							Name:     "a",
							Children: []Node{&TextNode{Text: "2"}},
							Inner:    "2",
							Delims:   DefaultDelimiters,
							Pos:      Position{Offset: 31, Line: 1, Column: 32},
						},
					},
					Pos: Position{Line: 1, Column: 1},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Compile(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("compile error: %v", err)
			}

			if diff := cmp.Diff(tt.want, tmpl.Nodes()); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompile_SectionDelimiters(t *testing.T) {
	tmpl, err := Compile(
		context.Background(),
		"{{=| |=}}|#a|x|/a|",
	)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	nodes := tmpl.Nodes()
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}

	s, ok := nodes[0].(*SectionNode)
	if !ok {
		t.Fatalf("expected *SectionNode, got %T", nodes[0])
	}

	want := Delimiters{Open: "|", Close: "|"}
	if s.Delims != want {
		t.Errorf("expected delimiters %v, got %v", want, s.Delims)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		target error
		attrs  map[string]string
		line   int
		column int
	}{
		{
			name:   "mismatched close",
			input:  "{{#a}}{{b}}{{/b}}",
			target: ErrUnmatchedSection,
			attrs:  map[string]string{"expected": "a", "found": "b"},
			line:   1,
			column: 12,
		},
		{
			name:   "close without open",
			input:  "x\n{{/a}}",
			target: ErrUnmatchedSection,
			attrs:  map[string]string{"expected": "", "found": "a"},
			line:   2,
			column: 1,
		},
		{
			name:   "unclosed section",
			input:  "{{#a}}{{#b}}{{/b}}",
			target: ErrUnclosedSection,
			attrs:  map[string]string{"name": "a"},
			line:   1,
			column: 1,
		},
		{
			name:   "unclosed parent",
			input:  "{{<base}}",
			target: ErrUnclosedSection,
			attrs:  map[string]string{"name": "base"},
			line:   1,
			column: 1,
		},
		{
			name:   "empty variable",
			input:  "ab{{ }}",
			target: ErrEmptyExpression,
			line:   1,
			column: 3,
		},
		{
			name:   "empty section",
			input:  "{{#}}{{/}}",
			target: ErrEmptyExpression,
			line:   1,
			column: 1,
		},
		{
			name:   "empty partial",
			input:  "{{>}}",
			target: ErrEmptyExpression,
			attrs:  map[string]string{"tag": "Partial"},
			line:   1,
			column: 1,
		},
		{
			name:   "invalid path",
			input:  "{{a..b}}",
			target: ErrInvalidExpression,
			line:   1,
			column: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Compile(context.Background(), tt.input)
			if tmpl != nil {
				t.Errorf("expected no template on error")
			}

			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}

			if !errors.Is(err, ErrCompile) {
				t.Errorf("expected compile error class, got %v", err)
			}

			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *Error, got %T", err)
			}

			for key, want := range tt.attrs {
				got, ok := e.Attr(key)
				if !ok {
					t.Errorf("missing attribute %q", key)

					continue
				}

				if got.String() != want {
					t.Errorf("attribute %q: expected %q, got %q", key, want, got.String())
				}
			}

			pos := e.Position()
			if pos.Line != tt.line || pos.Column != tt.column {
				t.Errorf("expected line %d column %d, got %s", tt.line, tt.column, pos)
			}
		})
	}
}

func TestCompile_ErrorMessage(t *testing.T) {
	_, err := Compile(context.Background(), "{{#a}}{{b}}{{/b}}")

	want := `unmatched section expected="a" found="b" at line 1, column 12`
	if err == nil || err.Error() != want {
		t.Errorf("expected %q, got %v", want, err)
	}
}

func TestMustCompile(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()

	MustCompile("{{#a}}")
}

func TestCompile_Options(t *testing.T) {
	tmpl, err := Compile(
		context.Background(),
		"<%name%>",
		WithName("greeting"),
		WithDelimiters(Delimiters{Open: "<%", Close: "%>"}),
	)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	if tmpl.Name() != "greeting" {
		t.Errorf("expected name %q, got %q", "greeting", tmpl.Name())
	}

	if tmpl.Source() != "<%name%>" {
		t.Errorf("unexpected source %q", tmpl.Source())
	}

	out, _, err := tmpl.Render(context.Background(), map[string]any{"name": "x"})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}

	if out != "x" {
		t.Errorf("expected %q, got %q", "x", out)
	}
}
