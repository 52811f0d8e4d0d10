package mustache

import "strings"

// Renderable is implemented by values that render themselves in place of a
// tag. The returned flag reports whether the output is HTML-safe.
//
// For section tags the value is handed the tag, so it can render the
// section's content or a template of its own. Output of an escaping
// variable tag that is not declared safe is escaped.
type Renderable interface {
	RenderContent(tag *Tag, c *Context) (string, bool, error)
}

// RenderFunc adapts a function to the [Renderable] interface.
type RenderFunc func(tag *Tag, c *Context) (string, bool, error)

// RenderContent calls f(tag, c).
func (f RenderFunc) RenderContent(tag *Tag, c *Context) (string, bool, error) {
	return f(tag, c)
}

// Tag describes the tag a [Renderable] is rendering for. It is only valid
// for the duration of the RenderContent call it was passed to.
type Tag struct {
	typ     TagType
	section *SectionNode // nil for variable tags
	r       *renderer
}

// Type returns the type of the tag.
func (t *Tag) Type() TagType { return t.typ }

// InnerTemplateString returns the raw source between a section's opening
// and closing tags. It is empty for variable tags.
func (t *Tag) InnerTemplateString() string {
	if t.section == nil {
		return ""
	}

	return t.section.Inner
}

// Delimiters returns the delimiters active for the tag's content.
func (t *Tag) Delimiters() Delimiters {
	if t.section == nil {
		return DefaultDelimiters
	}

	return t.section.Delims
}

// Repository returns the repository partials are resolved from, if any.
func (t *Tag) Repository() Repository { return t.r.repo }

// RenderContent renders the tag's content against c. Variable tags have no
// content and render the empty string.
func (t *Tag) RenderContent(c *Context) (string, bool, error) {
	if t.section == nil {
		return "", true, nil
	}

	var sb strings.Builder

	safe, err := t.r.renderNodes(&sb, c, t.section.Children)
	if err != nil {
		return "", false, err
	}

	return sb.String(), safe, nil
}

// RenderTemplate compiles source with the tag's delimiters and renders it
// against c. The render counts toward the recursion ceiling.
func (t *Tag) RenderTemplate(c *Context, source string) (string, bool, error) {
	pos := Position{}
	if t.section != nil {
		pos = t.section.Pos
	}

	var sb strings.Builder

	safe, err := t.r.renderSource(&sb, c, source, t.Delimiters(), pos)
	if err != nil {
		return "", false, err
	}

	return sb.String(), safe, nil
}
