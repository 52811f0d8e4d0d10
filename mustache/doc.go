// Package mustache compiles and renders logic-less templates.
//
// A template is compiled once into an immutable tag tree and rendered any
// number of times, concurrently, against a stack of data frames. Rendering
// returns the output text together with a flag reporting whether the output
// is HTML-safe.
//
// # Syntax
//
//	{{ name }}              escaped variable
//	{{{ name }}} {{& name }} unescaped variable
//	{{# name }}...{{/ name }} section
//	{{^ name }}...{{/ name }} inverted section
//	{{$ name }}...{{/ name }} overridable block
//	{{> name }}             partial
//	{{< name }}...{{/ name }} partial with block overrides
//	{{! comment }}          comment
//	{{=<% %>=}}             delimiter change
//
// Close tags may omit the name: {{/}} closes whatever section is open.
// A delimiter change lasts until the end of the enclosing section, or to
// the end of the template at top level.
//
// # Expressions
//
// Tag bodies are dotted paths, optionally followed by filters:
//
//	{{ user.name }}
//	{{ . }}
//	{{ .name }}
//	{{ items.count }}
//	{{ name | upper }}
//
// Filters are ordinary context values such as a func(any) any, so upper
// above must be supplied with the data.
// The first segment of a path is looked up in each context frame from the
// innermost outward. Later segments are looked up on the result only. A
// leading dot restricts the lookup to the innermost frame. Unresolved
// names render nothing and are never errors.
//
// # Sections
//
// A section over a slice, array or iter.Seq[any] renders once per element.
// A section over a func(string) string receives the raw section source and
// its result is compiled with the section's delimiters and rendered. A
// section over a [Renderable] delegates entirely to it. Any other truthy
// value is pushed as a frame and the section renders once.
//
// Absent values, nil, false, numeric zero, empty strings and empty sequences
// are falsy.
//
// # Inheritance
//
// A parent tag renders a partial while its blocks override the blocks of the
// same name in that partial and in any partial it includes. When templates
// are chained, the override from the most derived template wins.
package mustache
