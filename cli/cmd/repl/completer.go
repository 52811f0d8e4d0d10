package repl

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/mustache"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "data", "keys", "partials", "edit", "clear", "quit"}

// tagSigils are the characters that may follow an open delimiter to select
// the tag type.
const tagSigils = "#^/&>$<{!="

// maxKeyDepth limits how deep nested maps are walked for key paths.
const maxKeyDepth = 4

// tagWord returns the key being typed inside an unclosed tag at the cursor,
// its byte boundaries within input, and the tag's sigil (0 for a variable).
// ok is false when the cursor is not inside a tag that takes a key, such as
// outside any tag or in a comment.
//
// A filter separator starts a new word, so filter names complete as well.
func tagWord(
	input string,
	cursor int,
	delims mustache.Delimiters,
) (word string, start, end int, sigil byte, ok bool) {
	cursor = min(cursor, len(input))

	open := strings.LastIndex(input[:cursor], delims.Open)
	if open < 0 {
		return "", cursor, cursor, 0, false
	}

	pos := open + len(delims.Open)
	if strings.Contains(input[pos:cursor], delims.Close) {
		return "", cursor, cursor, 0, false
	}

	if pos < cursor && strings.IndexByte(tagSigils, input[pos]) >= 0 {
		sigil = input[pos]
		pos++
	}

	if sigil == '!' || sigil == '=' {
		return "", cursor, cursor, sigil, false
	}

	if i := strings.LastIndexByte(input[pos:cursor], '|'); i >= 0 {
		pos += i + 1
	}

	for pos < cursor && isSpace(input[pos]) {
		pos++
	}

	if strings.ContainsAny(input[pos:cursor], " \t") {
		return "", cursor, cursor, sigil, false
	}

	start, end = pos, cursor
	for end < len(input) && !isWordBoundary(input[end], delims) {
		end++
	}

	return input[start:end], start, end, sigil, true
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' }

func isWordBoundary(b byte, delims mustache.Delimiters) bool {
	return isSpace(b) || b == '|' || b == '}' || b == delims.Close[0]
}

// ctrlWord returns the word before the cursor in control mode.
func ctrlWord(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))
	start = strings.LastIndexAny(input[:cursor], " \t") + 1

	end = cursor
	for end < len(input) && !isSpace(input[end]) {
		end++
	}

	return input[start:end], start, end
}

// keyPaths returns the dotted paths of every key in data, walking nested
// maps. Keys of maps inside lists are included without a prefix because
// they resolve on the list item inside a section.
func keyPaths(data map[string]any) []string {
	seen := make(map[string]bool)

	var walk func(prefix string, m map[string]any, depth int)

	walk = func(prefix string, m map[string]any, depth int) {
		for k, v := range m {
			path := k
			if prefix != "" {
				path = prefix + "." + k
			}

			seen[path] = true

			if depth+1 >= maxKeyDepth {
				continue
			}

			switch v := v.(type) {
			case map[string]any:
				walk(path, v, depth+1)

			case []any:
				for _, item := range v {
					if im, ok := item.(map[string]any); ok {
						walk("", im, depth+1)
					}
				}
			}
		}
	}

	walk("", data, 0)

	return slices.Sorted(maps.Keys(seen))
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. An empty word inside a tag matches every candidate.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()
	cursor := m.input.Position()

	var (
		word       string
		candidates []string
	)

	if m.mode == modeCtrl {
		word, wordStart, wordEnd = ctrlWord(input, cursor)
		if word == "" {
			return nil, wordStart, wordEnd
		}

		candidates = ctrlCommands
	} else {
		var (
			sigil byte
			ok    bool
		)

		word, wordStart, wordEnd, sigil, ok = tagWord(input, cursor, m.delims)
		if !ok {
			return nil, wordStart, wordEnd
		}

		if sigil == '>' || sigil == '<' {
			candidates = m.partials
		} else {
			candidates = m.keys
		}
	}

	if word == "" {
		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. The selected candidate (when tabbing)
// uses the selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		last := i == len(matches)-1
		if i > 0 && used+entryWidth+ellipsisWidth > width && !(last && used+entryWidth <= width) {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := suggestionStyle.Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = selectedStyle.Bold(true)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	return b.String()
}
