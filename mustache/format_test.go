package mustache

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestTemplate_Format(t *testing.T) {
	tmpl := MustCompile("Hi {{name}}{{#a}}x{{{y}}}{{/a}}{{>p}}{{<q}}{{$b}}z{{/b}}{{/q}}")

	var buf bytes.Buffer

	err := tmpl.Format(context.Background(), &buf, 2)
	if err != nil {
		t.Fatalf("format error: %v", err)
	}

	want := strings.Join([]string{
		`text "Hi "`,
		`variable name`,
		`section a`,
		`  text "x"`,
		`  unescaped y`,
		`partial p`,
		`parent q`,
		`  block b`,
		`    text "z"`,
		``,
	}, "\n")

	if buf.String() != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, buf.String())
	}
}

func TestTemplate_FormatJSON(t *testing.T) {
	tmpl := MustCompile("{{a}}{{^b}}c{{/b}}", WithName("t"))

	var buf bytes.Buffer

	err := tmpl.FormatJSON(context.Background(), &buf, 0)
	if err != nil {
		t.Fatalf("format error: %v", err)
	}

	want := `{"name":"t","nodes":[{"escape":true,"variable":"a"},` +
		`{"children":[{"text":"c"}],"inverted":"b"}]}` + "\n"

	if buf.String() != want {
		t.Errorf("expected %s, got %s", want, buf.String())
	}
}

func TestTemplate_FormatYAML(t *testing.T) {
	tmpl := MustCompile("{{a}}{{>p}}")

	var buf bytes.Buffer

	err := tmpl.FormatYAML(context.Background(), &buf, 2)
	if err != nil {
		t.Fatalf("format error: %v", err)
	}

	for _, want := range []string{"variable: a", "partial: p", "escape: true"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, buf.String())
		}
	}
}
