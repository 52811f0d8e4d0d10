package mustache

import (
	"log/slog"
	"sort"
	"strings"
)

// lexState is a mode of the lexer state machine.
type lexState int

const (
	stateText lexState = iota
	stateTag
	stateComment
	stateDone
)

// lexer scans template source into tokens.
type lexer struct {
	src      string
	pos      int
	lines    []int // byte offsets of line starts
	delims   Delimiters
	saved    []Delimiters // delimiters to restore when a section closes
	state    lexState
	tagStart int // offset of the current tag's opening delimiter
	tokens   []Token
}

// Tokenize scans source into a sequence of tokens, starting with the given
// delimiters. The zero Delimiters value selects [DefaultDelimiters].
//
// A delimiter directive applies until the end of the section it appears in,
// or to the end of source at top level. Lines holding nothing but whitespace
// and a single non-variable tag are removed from the resulting text tokens.
func Tokenize(source string, delims Delimiters) ([]Token, error) {
	l := newLexer(source, delims)

	err := l.run()
	if err != nil {
		return nil, err
	}

	return l.trimStandalone(), nil
}

func newLexer(source string, delims Delimiters) *lexer {
	if delims.Open == "" || delims.Close == "" {
		delims = DefaultDelimiters
	}

	lines := []int{0}

	for i := range len(source) {
		if source[i] == '\n' {
			lines = append(lines, i+1)
		}
	}

	return &lexer{
		src:    source,
		lines:  lines,
		delims: delims,
		state:  stateText,
	}
}

func (l *lexer) run() error {
	for l.state != stateDone {
		var err error

		switch l.state {
		case stateText:
			l.lexText()

		case stateTag:
			err = l.lexTag()

		case stateComment:
			err = l.lexComment()
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// position converts a byte offset into a Position.
func (l *lexer) position(offset int) Position {
	line := sort.Search(len(l.lines), func(i int) bool {
		return l.lines[i] > offset
	})

	return Position{
		Offset: offset,
		Line:   line,
		Column: offset - l.lines[line-1] + 1,
	}
}

func (l *lexer) emit(tok Token) {
	tok.Pos = l.position(tok.Start)
	l.tokens = append(l.tokens, tok)
}

// lexText consumes text up to the next opening delimiter.
func (l *lexer) lexText() {
	i := strings.Index(l.src[l.pos:], l.delims.Open)
	if i < 0 {
		if l.pos < len(l.src) {
			l.emit(Token{
				Kind:  TokenText,
				Value: l.src[l.pos:],
				Start: l.pos,
				End:   len(l.src),
			})
		}

		l.pos = len(l.src)
		l.state = stateDone

		return
	}

	start := l.pos + i
	if start > l.pos {
		l.emit(Token{
			Kind:  TokenText,
			Value: l.src[l.pos:start],
			Start: l.pos,
			End:   start,
		})
	}

	l.tagStart = start
	l.pos = start + len(l.delims.Open)

	if strings.HasPrefix(strings.TrimLeft(l.src[l.pos:], " \t"), "!") {
		l.state = stateComment
	} else {
		l.state = stateTag
	}
}

// lexComment consumes a comment tag. Comments may contain anything except
// the closing delimiter.
func (l *lexer) lexComment() error {
	i := strings.Index(l.src[l.pos:], l.delims.Close)
	if i < 0 {
		return l.unterminated()
	}

	body := strings.TrimSpace(l.src[l.pos : l.pos+i])
	end := l.pos + i + len(l.delims.Close)

	l.emit(Token{
		Kind:   TokenComment,
		Value:  strings.TrimSpace(strings.TrimPrefix(body, "!")),
		Delims: l.delims,
		Start:  l.tagStart,
		End:    end,
	})

	l.pos = end
	l.state = stateText

	return nil
}

// lexTag consumes a tag whose opening delimiter has already been consumed.
func (l *lexer) lexTag() error {
	q := l.pos
	for q < len(l.src) && (l.src[q] == ' ' || l.src[q] == '\t') {
		q++
	}

	kind := TokenVariable
	closer := l.delims.Close

	if q < len(l.src) {
		switch l.src[q] {
		case '{':
			kind, closer = TokenUnescaped, "}"+l.delims.Close
		case '&':
			kind = TokenUnescaped
		case '=':
			kind, closer = TokenDelimiters, "="+l.delims.Close
		case '#':
			kind = TokenSection
		case '^':
			kind = TokenInverted
		case '$':
			kind = TokenBlock
		case '>':
			kind = TokenPartial
		case '<':
			kind = TokenParent
		case '/':
			kind = TokenClose
		}

		if kind != TokenVariable {
			q++
		}
	}

	i := strings.Index(l.src[q:], closer)
	if i < 0 {
		return l.unterminated()
	}

	body := strings.TrimSpace(l.src[q : q+i])
	end := q + i + len(closer)

	tok := Token{
		Kind:   kind,
		Value:  body,
		Delims: l.delims,
		Start:  l.tagStart,
		End:    end,
	}

	switch kind {
	case TokenDelimiters:
		delims, err := parseDelimiters(body)
		if err != nil {
			return err.WithPosition(l.position(l.tagStart))
		}

		tok.Delims = delims
		l.delims = delims

	case TokenClose:
		if n := len(l.saved); n > 0 {
			l.delims = l.saved[n-1]
			l.saved = l.saved[:n-1]
		}

	default:
		if kind.opens() {
			l.saved = append(l.saved, l.delims)
		}
	}

	l.emit(tok)

	l.pos = end
	l.state = stateText

	return nil
}

func (l *lexer) unterminated() *Error {
	return ErrUnterminatedTag.
		With(
			slog.String("open", l.delims.Open),
			slog.String("close", l.delims.Close),
		).
		WithPosition(l.position(l.tagStart))
}

// trimStandalone removes the whitespace surrounding standalone tags, along
// with the newline ending their line. A partial keeps the removed
// indentation so it can be applied to each line of its output.
func (l *lexer) trimStandalone() []Token {
	n := len(l.tokens)
	lead := make([]bool, n)  // cut text up to and including first newline
	trail := make([]bool, n) // cut text following the last newline

	for i, tok := range l.tokens {
		if !tok.Kind.standalone() || !l.blankBefore(i) || !l.blankAfter(i) {
			continue
		}

		if i > 0 {
			trail[i-1] = true

			if tok.Kind == TokenPartial {
				l.tokens[i].Indent = lastLine(l.tokens[i-1].Value)
			}
		}

		if i+1 < n {
			lead[i+1] = true
		}
	}

	out := make([]Token, 0, n)

	for i, tok := range l.tokens {
		if tok.Kind == TokenText && (lead[i] || trail[i]) {
			start, end := 0, len(tok.Value)

			if lead[i] {
				if j := strings.IndexByte(tok.Value, '\n'); j >= 0 {
					start = j + 1
				} else {
					start = end
				}
			}

			if trail[i] {
				if j := strings.LastIndexByte(tok.Value, '\n'); j >= 0 {
					end = j + 1
				} else {
					end = 0
				}
			}

			if start >= end {
				continue
			}

			tok.Value = tok.Value[start:end]
			tok.End = tok.Start + end
			tok.Start += start
			tok.Pos = l.position(tok.Start)
		}

		out = append(out, tok)
	}

	return out
}

// blankBefore reports whether only whitespace precedes token i on its line.
func (l *lexer) blankBefore(i int) bool {
	if i == 0 {
		return true
	}

	prev := l.tokens[i-1]
	if prev.Kind != TokenText {
		return false
	}

	j := strings.LastIndexByte(prev.Value, '\n')
	if j < 0 {
		return i == 1 && isBlank(prev.Value)
	}

	return isBlank(prev.Value[j+1:])
}

// blankAfter reports whether only whitespace follows token i on its line.
func (l *lexer) blankAfter(i int) bool {
	if i == len(l.tokens)-1 {
		return true
	}

	next := l.tokens[i+1]
	if next.Kind != TokenText {
		return false
	}

	j := strings.IndexByte(next.Value, '\n')
	if j < 0 {
		return i+1 == len(l.tokens)-1 && isBlank(next.Value)
	}

	return isBlank(strings.TrimSuffix(next.Value[:j], "\r"))
}

func lastLine(s string) string {
	return s[strings.LastIndexByte(s, '\n')+1:]
}

func isBlank(s string) bool {
	return strings.Trim(s, " \t") == ""
}
