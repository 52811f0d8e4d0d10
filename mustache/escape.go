package mustache

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML replaces the characters &, <, >, " and ' with HTML entities.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// escape returns s escaped when escaping is requested and s is not already
// safe. The result is safe whenever escaping was requested.
func escape(s string, safe, requested bool) (string, bool) {
	if !requested {
		return s, safe
	}

	if !safe {
		s = EscapeHTML(s)
	}

	return s, true
}

// indent prefixes every line of s that has content with prefix.
func indent(s, prefix string) string {
	if prefix == "" || s == "" {
		return s
	}

	var sb strings.Builder

	sb.Grow(len(s) + len(prefix)*strings.Count(s, "\n"))

	for line := range strings.SplitAfterSeq(s, "\n") {
		if line != "" {
			sb.WriteString(prefix)
			sb.WriteString(line)
		}
	}

	return sb.String()
}
