package mustache

// TagType is the type of a tag handed to rendering objects.
type TagType int

const (
	// TagVariable is the type of variable tags such as {{ name }}.
	TagVariable TagType = 1 << (iota + 1)

	// TagSection is the type of section tags such as {{# name }}...{{/}}.
	TagSection

	// TagBlock is the type of overridable section tags such as
	// {{$ name }}...{{/}}.
	TagBlock

	// TagInverted is the type of inverted section tags such as
	// {{^ name }}...{{/}}.
	TagInverted
)

// String returns a string representation of the tag type.
func (t TagType) String() string {
	switch t {
	case TagVariable:
		return "Variable"

	case TagSection:
		return "Section"

	case TagBlock:
		return "Block"

	case TagInverted:
		return "Inverted"

	default:
		return "Unknown"
	}
}

// Node is a compiled template node. The set of nodes is closed: it is one of
// [*TextNode], [*VariableNode], [*SectionNode], [*PartialNode] or
// [*ParentNode].
type Node interface {
	node()
}

// TextNode is literal output.
type TextNode struct {
	Text string
}

// VariableNode renders the value of an expression.
type VariableNode struct {
	Expr   Expression
	Escape bool
	Pos    Position
}

// SectionNode is a section, inverted section or overridable block.
//
// Blocks have a Name and no Expr. Inner holds the raw source between the
// opening and closing tags, and Delims the delimiters active at its start.
type SectionNode struct {
	Type     TagType
	Expr     Expression
	Name     string
	Children []Node
	Inner    string
	Delims   Delimiters
	Pos      Position
}

// PartialNode includes another template from the repository.
//
// Indent is prepended to every line of output when the partial tag stands
// alone on its line.
type PartialNode struct {
	Name   string
	Indent string
	Pos    Position
}

// ParentNode includes another template from the repository, replacing the
// blocks it declares with the given overrides.
type ParentNode struct {
	Name   string
	Blocks map[string]*SectionNode
	Pos    Position
}

func (*TextNode) node()     {}
func (*VariableNode) node() {}
func (*SectionNode) node()  {}
func (*PartialNode) node()  {}
func (*ParentNode) node()   {}
