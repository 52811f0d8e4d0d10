package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"

	"github.com/ardnew/mustache"
)

var (
	passColor  = color.New(color.FgGreen)
	failColor  = color.New(color.FgRed, color.Bold)
	caretColor = color.New(color.FgRed)
	gutter     = color.New(color.FgHiBlack)
)

// Check compiles templates and reports each result.
type Check struct {
	Files []string `arg:"" help:"Template files to compile ('-' for stdin)" name:"file"`
}

// Run executes the check command. It fails if any template fails to
// compile.
func (c *Check) Run(ctx context.Context) error {
	copts, err := optionsFrom(ctx).compileOptions()
	if err != nil {
		return err
	}

	w := stdout(ctx)
	failed := 0

	for _, name := range c.Files {
		source, err := readSource(name)
		if err == nil {
			_, err = mustache.Compile(ctx,
				source, append(copts, mustache.WithName(name))...)
		}

		if err != nil {
			failed++

			report(w, name, source, err)

			continue
		}

		passColor.Fprint(w, "ok")
		fmt.Fprintf(w, "   %s\n", name)
	}

	if failed > 0 {
		return ErrCheck.With(
			slog.Int("failed", failed),
			slog.Int("total", len(c.Files)),
		)
	}

	return nil
}

func report(w io.Writer, name, source string, err error) {
	failColor.Fprint(w, "FAIL")
	fmt.Fprintf(w, " %s: %v\n", name, err)

	var merr *mustache.Error
	if errors.As(err, &merr) {
		io.WriteString(w, snippet(source, merr.Position()))
	}
}

// snippet returns the source line at pos with a caret under its column, or
// "" when pos is unset or out of range.
func snippet(source string, pos mustache.Position) string {
	if pos.Line < 1 || pos.Column < 1 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	line := strings.TrimSuffix(lines[pos.Line-1], "\r")
	col := min(pos.Column-1, len(line))

	// Keep tabs so the caret lines up with the source as displayed.
	pad := strings.Map(func(r rune) rune {
		if r == '\t' {
			return r
		}

		return ' '
	}, line[:col])

	num := fmt.Sprintf("%4d", pos.Line)

	var sb strings.Builder

	sb.WriteString(gutter.Sprint(num + " | "))
	sb.WriteString(line)
	sb.WriteByte('\n')
	sb.WriteString(gutter.Sprint(strings.Repeat(" ", len(num)) + " | "))
	sb.WriteString(pad)
	sb.WriteString(caretColor.Sprint("^"))
	sb.WriteByte('\n')

	return sb.String()
}
