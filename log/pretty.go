package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Palette used by the pretty handlers. Colors are suppressed automatically
// when [color.NoColor] is set, for example when output is not a terminal.
var (
	keyColor      = color.New(color.FgHiBlack)
	stringColor   = color.New(color.FgCyan)
	numberColor   = color.New(color.FgYellow)
	trueColor     = color.New(color.FgGreen)
	falseColor    = color.New(color.FgRed)
	durationColor = color.New(color.FgMagenta)
	timeColor     = color.New(color.FgBlue)
	nullColor     = color.New(color.FgHiBlack)
)

func levelColor(level slog.Level) *color.Color {
	switch {
	case level >= slog.LevelError:
		return color.New(color.FgRed, color.Bold)
	case level >= slog.LevelWarn:
		return color.New(color.FgYellow)
	case level >= slog.LevelInfo:
		return color.New(color.FgGreen)
	case level >= slog.LevelDebug:
		return color.New(color.FgBlue)
	default:
		return color.New(color.FgMagenta)
	}
}

func levelName(level slog.Level) string {
	return strings.ToUpper(Level(level).String())
}

// prettyState is shared by both pretty handlers: the attributes and groups
// accumulated through WithAttrs and WithGroup.
type prettyState struct {
	opts       slog.HandlerOptions
	formatTime FormatTime
	mu         *sync.Mutex
	w          io.Writer
	attrs      []slog.Attr
	groups     []string
}

func newPrettyState(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) prettyState {
	if formatTime == nil {
		formatTime = makeFormatTimeFunc(DefaultTimeLayout)
	}

	return prettyState{
		opts:       *opts,
		formatTime: formatTime,
		mu:         &sync.Mutex{},
		w:          w,
	}
}

func (s prettyState) enabled(level slog.Level) bool {
	threshold := slog.LevelInfo
	if s.opts.Level != nil {
		threshold = s.opts.Level.Level()
	}

	return level >= threshold
}

// qualify prefixes key with the open groups.
func (s prettyState) qualify(key string) string {
	if len(s.groups) == 0 {
		return key
	}

	return strings.Join(s.groups, ".") + "." + key
}

func (s prettyState) withAttrs(attrs []slog.Attr) prettyState {
	next := s

	next.attrs = slices.Clip(s.attrs)
	for _, a := range attrs {
		a.Key = s.qualify(a.Key)
		next.attrs = append(next.attrs, a)
	}

	return next
}

func (s prettyState) withGroup(name string) prettyState {
	next := s
	next.groups = append(slices.Clip(s.groups), name)

	return next
}

// header returns the time, level, source, and message of r as attributes.
func (s prettyState) header(r slog.Record) []slog.Attr {
	header := make([]slog.Attr, 0, 4)

	if !r.Time.IsZero() {
		if t := s.formatTime(r.Time); t != "" {
			header = append(header, slog.String(slog.TimeKey, t))
		}
	}

	header = append(header, slog.Any(slog.LevelKey, r.Level))

	if s.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			header = append(header,
				slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	return append(header, slog.String(slog.MessageKey, r.Message))
}

// body returns the preformatted attributes followed by those of r.
func (s prettyState) body(r slog.Record) []slog.Attr {
	body := make([]slog.Attr, 0, len(s.attrs)+r.NumAttrs())
	body = append(body, s.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		a.Key = s.qualify(a.Key)
		body = append(body, a)

		return true
	})

	return body
}

func (s prettyState) write(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.w.Write(buf.Bytes())

	return err
}

// flatten expands group values into dotted keys and resolves LogValuers.
func flatten(prefix string, a slog.Attr, yield func(string, slog.Value)) {
	v := a.Value.Resolve()

	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}

	if v.Kind() != slog.KindGroup {
		if key != "" || !v.Equal(slog.Value{}) {
			yield(key, v)
		}

		return
	}

	for _, sub := range v.Group() {
		flatten(key, sub, yield)
	}
}

// prettyTextHandler implements a colorized text handler for log messages.
type prettyTextHandler struct {
	prettyState
}

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyTextHandler {
	return &prettyTextHandler{newPrettyState(w, opts, formatTime)}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	for _, a := range h.header(r) {
		h.writeAttr(buf, a.Key, a.Value)
	}

	for _, a := range h.body(r) {
		flatten("", a, func(key string, v slog.Value) {
			h.writeAttr(buf, key, v)
		})
	}

	return h.write(buf)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	return &prettyTextHandler{h.withAttrs(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	return &prettyTextHandler{h.withGroup(name)}
}

func (h *prettyTextHandler) writeAttr(buf *bytes.Buffer, key string, v slog.Value) {
	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}

	buf.WriteString(keyColor.Sprint(key))
	buf.WriteByte('=')
	writeValue(buf, v)
}

// prettyJSONHandler implements a multiline, colorized JSON-like handler for
// log messages. Strings are written without quotes.
type prettyJSONHandler struct {
	prettyState
}

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyJSONHandler {
	return &prettyJSONHandler{newPrettyState(w, opts, formatTime)}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)
	buf.WriteString("{\n")

	first := true
	field := func(key string, v slog.Value) {
		if !first {
			buf.WriteString(",\n")
		}

		first = false

		buf.WriteString("  ")
		buf.WriteString(keyColor.Sprint(key))
		buf.WriteString(": ")
		writeValue(buf, v)
	}

	for _, a := range h.header(r) {
		field(a.Key, a.Value)
	}

	for _, a := range h.body(r) {
		flatten("", a, field)
	}

	buf.WriteString("\n}")

	return h.write(buf)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	return &prettyJSONHandler{h.withAttrs(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	return &prettyJSONHandler{h.withGroup(name)}
}

func writeValue(buf *bytes.Buffer, v slog.Value) {
	switch v.Kind() {
	case slog.KindString:
		buf.WriteString(stringColor.Sprint(v.String()))

	case slog.KindInt64:
		buf.WriteString(numberColor.Sprint(strconv.FormatInt(v.Int64(), 10)))

	case slog.KindUint64:
		buf.WriteString(numberColor.Sprint(strconv.FormatUint(v.Uint64(), 10)))

	case slog.KindFloat64:
		buf.WriteString(numberColor.Sprint(strconv.FormatFloat(v.Float64(), 'g', -1, 64)))

	case slog.KindBool:
		if v.Bool() {
			buf.WriteString(trueColor.Sprint("true"))
		} else {
			buf.WriteString(falseColor.Sprint("false"))
		}

	case slog.KindDuration:
		buf.WriteString(durationColor.Sprint(v.Duration().String()))

	case slog.KindTime:
		buf.WriteString(timeColor.Sprint(v.Time().Format(DefaultTimeLayout)))

	case slog.KindAny:
		switch val := v.Any().(type) {
		case slog.Level:
			buf.WriteString(levelColor(val).Sprint(levelName(val)))

		case nil:
			buf.WriteString(nullColor.Sprint("null"))

		default:
			buf.WriteString(stringColor.Sprint(v.String()))
		}

	default:
		buf.WriteString(stringColor.Sprint(v.String()))
	}
}
