package mustache

import (
	"log/slog"
	"strconv"
	"strings"
)

// Position identifies a location in template source.
// Line and Column are 1-based; Column counts bytes.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns the position as "line L, column C".
func (p Position) String() string {
	return "line " + strconv.Itoa(p.Line) + ", column " + strconv.Itoa(p.Column)
}

// Delimiters is a pair of tag delimiters.
type Delimiters struct {
	Open  string
	Close string
}

// DefaultDelimiters are the delimiters every template starts with.
var DefaultDelimiters = Delimiters{Open: "{{", Close: "}}"}

// String returns the delimiters as they appear in a delimiter directive.
func (d Delimiters) String() string {
	return d.Open + " " + d.Close
}

// ParseDelimiters parses a pair of delimiters separated by whitespace,
// such as "<% %>".
func ParseDelimiters(s string) (Delimiters, error) {
	d, err := parseDelimiters(s)
	if err != nil {
		return Delimiters{}, err
	}

	return d, nil
}

func parseDelimiters(s string) (Delimiters, *Error) {
	fields := strings.Fields(s)
	if len(fields) != 2 || !validDelimiter(fields[0]) ||
		!validDelimiter(fields[1]) {
		return Delimiters{}, ErrMalformedDelimiters.With(
			slog.String("directive", s),
		)
	}

	return Delimiters{Open: fields[0], Close: fields[1]}, nil
}

func validDelimiter(s string) bool {
	return s != "" && !strings.ContainsAny(s, "= \t\r\n")
}

// TokenKind identifies the kind of a lexical token.
type TokenKind int

const (
	// TokenText is a run of literal text.
	TokenText TokenKind = iota

	// TokenVariable is an escaped variable tag: {{name}}.
	TokenVariable

	// TokenUnescaped is an unescaped variable tag: {{{name}}} or {{&name}}.
	TokenUnescaped

	// TokenSection opens a section: {{#name}}.
	TokenSection

	// TokenInverted opens an inverted section: {{^name}}.
	TokenInverted

	// TokenBlock opens an overridable block: {{$name}}.
	TokenBlock

	// TokenPartial includes a partial: {{>name}}.
	TokenPartial

	// TokenParent opens a partial with block overrides: {{<name}}.
	TokenParent

	// TokenClose closes a section-like tag: {{/name}}.
	TokenClose

	// TokenComment is a comment tag: {{!...}}.
	TokenComment

	// TokenDelimiters is a delimiter directive: {{=<% %>=}}.
	TokenDelimiters
)

// String returns a string representation of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "Text"

	case TokenVariable:
		return "Variable"

	case TokenUnescaped:
		return "Unescaped"

	case TokenSection:
		return "Section"

	case TokenInverted:
		return "Inverted"

	case TokenBlock:
		return "Block"

	case TokenPartial:
		return "Partial"

	case TokenParent:
		return "Parent"

	case TokenClose:
		return "Close"

	case TokenComment:
		return "Comment"

	case TokenDelimiters:
		return "Delimiters"

	default:
		return "Unknown"
	}
}

// opens reports whether the token kind opens a scope closed by TokenClose.
func (k TokenKind) opens() bool {
	switch k {
	case TokenSection, TokenInverted, TokenBlock, TokenParent:
		return true

	default:
		return false
	}
}

// standalone reports whether a tag of this kind may occupy a line by itself
// and have that line removed from output.
func (k TokenKind) standalone() bool {
	switch k {
	case TokenText, TokenVariable, TokenUnescaped:
		return false

	default:
		return true
	}
}

// Token is one lexical unit of template source.
//
// For text tokens Value holds the literal text. For tags it holds the
// trimmed tag body without sigils. For delimiter directives Delims holds the
// new delimiters; for all other tags Delims holds the delimiters the tag was
// written with.
type Token struct {
	Kind   TokenKind
	Value  string
	Delims Delimiters
	Pos    Position
	Start  int    // byte offset of the first character
	End    int    // byte offset following the last character
	Indent string // indentation of a standalone partial
}
