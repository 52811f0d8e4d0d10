package repo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ardnew/mustache"
)

// countingLoader counts Load calls per name.
type countingLoader struct {
	*MapLoader

	mu    sync.Mutex
	calls map[string]int
}

func newCountingLoader(sources map[string]string) *countingLoader {
	return &countingLoader{MapLoader: NewMapLoader(sources), calls: make(map[string]int)}
}

func (l *countingLoader) Load(ctx context.Context, name string) (string, error) {
	l.mu.Lock()
	l.calls[name]++
	l.mu.Unlock()

	return l.MapLoader.Load(ctx, name)
}

func (l *countingLoader) count(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.calls[name]
}

func TestRepository_Render(t *testing.T) {
	ctx := context.Background()
	r := New(NewMapLoader(map[string]string{
		"page":  "<h1>{{>title}}</h1>\n{{#items}}\n  {{>item}}\n{{/items}}",
		"title": "{{title}}",
		"item":  "- {{.}}\n",
		"base":  "[{{$body}}default{{/body}}]",
		"child": "{{<base}}{{$body}}{{title}}{{/body}}{{/base}}",
		"loop":  "{{>loop}}",
		"lost":  "{{>nowhere}}",
	}))

	data := map[string]any{"title": "Hi & bye", "items": []string{"a", "b"}}

	tests := []struct {
		name    string
		want    string
		wantErr error
	}{
		{name: "page", want: "<h1>Hi &amp; bye</h1>\n  - a\n  - b\n"},
		{name: "child", want: "[Hi &amp; bye]"},
		{name: "base", want: "[default]"},
		{name: "loop", wantErr: mustache.ErrRecursionLimit},
		{name: "lost", wantErr: mustache.ErrPartialNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := r.Template(ctx, tt.name)
			if err != nil {
				t.Fatalf("template: %v", err)
			}

			got, _, err := tmpl.Render(ctx, data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("render: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRepository_Caching(t *testing.T) {
	ctx := context.Background()
	l := newCountingLoader(map[string]string{"a": "{{x}}", "b": "{{x}}", "c": "{{y}}"})
	r := New(l)

	a1, err := r.Template(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}

	a2, _ := r.Template(ctx, "a")
	if a1 != a2 {
		t.Error("expected the cached template on second lookup")
	}

	if n := l.count("a"); n != 1 {
		t.Errorf("expected 1 load, got %d", n)
	}

	b, _ := r.Template(ctx, "b")
	c, _ := r.Template(ctx, "c")

	if b.Name() != "b" || a1.Name() != "a" {
		t.Errorf("unexpected names %q %q", a1.Name(), b.Name())
	}

	if a1.Nodes()[0] != b.Nodes()[0] {
		t.Error("expected identical sources to share a tag tree")
	}

	if a1.Nodes()[0] == c.Nodes()[0] {
		t.Error("expected different sources to have distinct trees")
	}

	r.Clear()

	_, _ = r.Template(ctx, "a")
	if n := l.count("a"); n != 2 {
		t.Errorf("expected reload after Clear, got %d loads", n)
	}
}

func TestRepository_FailuresNotCached(t *testing.T) {
	ctx := context.Background()
	l := NewMapLoader(nil)
	r := New(l)

	_, err := r.Template(ctx, "late")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_ = l.Store(ctx, "late", "ok")

	tmpl, err := r.Template(ctx, "late")
	if err != nil {
		t.Fatalf("expected template after store, got %v", err)
	}

	if tmpl.Source() != "ok" {
		t.Errorf("expected %q, got %q", "ok", tmpl.Source())
	}

	_ = l.Store(ctx, "bad", "{{#open}}")

	_, err = r.Template(ctx, "bad")
	if !errors.Is(err, mustache.ErrUnclosedSection) {
		t.Errorf("expected compile error, got %v", err)
	}
}

func TestRepository_ConcurrentOnce(t *testing.T) {
	ctx := context.Background()
	l := newCountingLoader(map[string]string{"x": "{{x}}"})
	r := New(l)

	var (
		wg   sync.WaitGroup
		fail atomic.Int32
	)

	for range 32 {
		wg.Go(func() {
			_, err := r.Template(ctx, "x")
			if err != nil {
				fail.Add(1)
			}
		})
	}

	wg.Wait()

	if fail.Load() != 0 {
		t.Errorf("%d lookups failed", fail.Load())
	}

	if n := l.count("x"); n != 1 {
		t.Errorf("expected 1 load, got %d", n)
	}
}

func TestRepository_Preload(t *testing.T) {
	ctx := context.Background()
	l := newCountingLoader(map[string]string{"a": "1", "b": "2", "c": "3"})
	r := New(l, WithConcurrency(2))

	err := r.Preload(ctx)
	if err != nil {
		t.Fatalf("preload: %v", err)
	}

	for _, name := range []string{"a", "b", "c"} {
		if n := l.count(name); n != 1 {
			t.Errorf("expected %s loaded once, got %d", name, n)
		}
	}

	err = r.Preload(ctx, "a", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	err = New(LoaderFunc(func(context.Context, string) (string, error) {
		return "", nil
	})).Preload(ctx)
	if err != nil {
		t.Errorf("expected no-op preload for a loader that cannot list, got %v", err)
	}
}

func TestRepository_Compile(t *testing.T) {
	ctx := context.Background()
	r := New(NewMapLoader(map[string]string{"p": "({{v}})"}),
		WithCompileOptions(mustache.WithDelimiters(mustache.Delimiters{Open: "<%", Close: "%>"})))

	tmpl, err := r.Compile(ctx, "<%>p%> <%v%>")
	if err != nil {
		t.Fatal(err)
	}

	got, _, err := tmpl.Render(ctx, map[string]any{"v": 1})
	if err != nil {
		t.Fatal(err)
	}

	// The partial is compiled with the same options as everything else in
	// the repository.
	if want := "({{v}}) 1"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
