package mustache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes an outline of the tag tree to the writer, one node per line,
// nesting children by indent spaces.
func (t *Template) Format(_ context.Context, w io.Writer, indent int) error {
	return formatNodes(w, t.nodes, indent, 0)
}

// FormatJSON writes the tag tree as JSON to the writer.
func (t *Template) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(t, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(t)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the tag tree as YAML to the writer.
func (t *Template) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, t.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// MarshalJSON implements json.Marshaler for Template.
func (t *Template) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToMap())
}

// ToMap converts the tag tree to a native Go map structure.
func (t *Template) ToMap() map[string]any {
	result := map[string]any{"nodes": nodesToNative(t.nodes)}
	if t.name != "" {
		result["name"] = t.name
	}

	return result
}

// ToNative converts a node to a native Go map structure.
func ToNative(n Node) map[string]any {
	switch n := n.(type) {
	case *TextNode:
		return map[string]any{"text": n.Text}

	case *VariableNode:
		return map[string]any{
			"variable": n.Expr.String(),
			"escape":   n.Escape,
		}

	case *SectionNode:
		key, name := sectionLabel(n)

		return map[string]any{
			key:        name,
			"children": nodesToNative(n.Children),
		}

	case *PartialNode:
		result := map[string]any{"partial": n.Name}
		if n.Indent != "" {
			result["indent"] = n.Indent
		}

		return result

	case *ParentNode:
		blocks := make(map[string]any, len(n.Blocks))
		for name, b := range n.Blocks {
			blocks[name] = nodesToNative(b.Children)
		}

		return map[string]any{
			"parent": n.Name,
			"blocks": blocks,
		}

	default:
		return nil
	}
}

func nodesToNative(nodes []Node) []any {
	result := make([]any, 0, len(nodes))
	for _, n := range nodes {
		result = append(result, ToNative(n))
	}

	return result
}

func sectionLabel(n *SectionNode) (string, string) {
	switch n.Type {
	case TagBlock:
		return "block", n.Name

	case TagInverted:
		return "inverted", n.Expr.String()

	default:
		return "section", n.Expr.String()
	}
}

// formatNodes writes one outline line per node.
func formatNodes(w io.Writer, nodes []Node, indent, depth int) error {
	pad := strings.Repeat(" ", depth*indent)

	for _, n := range nodes {
		var err error

		switch n := n.(type) {
		case *TextNode:
			_, err = fmt.Fprintln(w, pad+"text "+strconv.Quote(n.Text))

		case *VariableNode:
			kind := "variable"
			if !n.Escape {
				kind = "unescaped"
			}

			_, err = fmt.Fprintln(w, pad+kind+" "+n.Expr.String())

		case *SectionNode:
			key, name := sectionLabel(n)

			_, err = fmt.Fprintln(w, pad+key+" "+name)
			if err == nil {
				err = formatNodes(w, n.Children, indent, depth+1)
			}

		case *PartialNode:
			_, err = fmt.Fprintln(w, pad+"partial "+n.Name)

		case *ParentNode:
			_, err = fmt.Fprintln(w, pad+"parent "+n.Name)

			for _, name := range slices.Sorted(maps.Keys(n.Blocks)) {
				if err != nil {
					break
				}

				err = formatNodes(w, []Node{n.Blocks[name]}, indent, depth+1)
			}
		}

		if err != nil {
			return err
		}
	}

	return nil
}
