package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/mustache"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, src := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))

		err := os.MkdirAll(filepath.Dir(p), 0o755)
		if err != nil {
			t.Fatal(err)
		}

		err = os.WriteFile(p, []byte(src), 0o644)
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestMapLoader(t *testing.T) {
	ctx := context.Background()
	l := NewMapLoader(map[string]string{"b": "B", "a": "A"})

	src, err := l.Load(ctx, "a")
	if err != nil || src != "A" {
		t.Fatalf("expected %q, got %q (%v)", "A", src, err)
	}

	_, err = l.Load(ctx, "z")
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, mustache.ErrPartialNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}

	err = l.Store(ctx, "c", "C")
	if err != nil {
		t.Fatal(err)
	}

	names, _ := l.Names(ctx)
	if diff := cmp.Diff([]string{"a", "b", "c"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	broken := errors.New("broken")

	tests := []struct {
		name    string
		loaders []Loader
		want    string
		wantErr error
	}{
		{
			name: "first wins",
			loaders: []Loader{
				NewMapLoader(map[string]string{"x": "1"}),
				NewMapLoader(map[string]string{"x": "2"}),
			},
			want: "1",
		},
		{
			name: "falls through misses",
			loaders: []Loader{
				NewMapLoader(nil),
				NewMapLoader(map[string]string{"x": "2"}),
			},
			want: "2",
		},
		{
			name: "stops on failure",
			loaders: []Loader{
				LoaderFunc(func(context.Context, string) (string, error) { return "", broken }),
				NewMapLoader(map[string]string{"x": "2"}),
			},
			wantErr: broken,
		},
		{
			name:    "all miss",
			loaders: []Loader{NewMapLoader(nil)},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Chain(tt.loaders...).Load(ctx, "x")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil || got != tt.want {
				t.Errorf("expected %q, got %q (%v)", tt.want, got, err)
			}
		})
	}
}

func TestChain_Names(t *testing.T) {
	l := Chain(
		NewMapLoader(map[string]string{"b": "", "a": ""}),
		LoaderFunc(func(context.Context, string) (string, error) { return "", ErrNotFound }),
		NewMapLoader(map[string]string{"c": "", "a": ""}),
	)

	lister, ok := l.(Lister)
	if !ok {
		t.Fatalf("Chain() = %T, want Lister", l)
	}

	got, err := lister.Names(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestDirLoader(t *testing.T) {
	ctx := context.Background()
	first, second := t.TempDir(), t.TempDir()

	writeFiles(t, first, map[string]string{
		"a.mustache":     "first a",
		"sub/b.mustache": "first b",
		"notes.txt":      "ignored",
	})
	writeFiles(t, second, map[string]string{
		"a.mustache": "second a",
		"c.mustache": "second c",
	})

	l := NewDirLoader("", first, filepath.Join(first, "missing"), second)

	tests := []struct {
		name    string
		want    string
		wantErr error
	}{
		{name: "a", want: "first a"},
		{name: "a.mustache", want: "first a"},
		{name: "sub/b", want: "first b"},
		{name: "c", want: "second c"},
		{name: "notes.txt", want: "ignored"},
		{name: "sub", wantErr: ErrNotFound},
		{name: "missing", wantErr: ErrNotFound},
		{name: "../a", wantErr: ErrInvalidName},
		{name: "/abs", wantErr: ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Load(ctx, tt.name)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	names, err := l.Names(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"a", "c", "sub/b"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestDirLoader_Extension(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{"", DefaultExtension},
		{"html", ".html"},
		{".tpl", ".tpl"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := NewDirLoader(tt.ext).Extension(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSQLLoader(t *testing.T) {
	ctx := context.Background()

	l, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "templates.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })

	for name, src := range map[string]string{"page": "v1", "header": "<h1>"} {
		err = l.Store(ctx, name, src)
		if err != nil {
			t.Fatalf("store %s: %v", name, err)
		}
	}

	err = l.Store(ctx, "page", "v2")
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := l.Load(ctx, "page")
	if err != nil || got != "v2" {
		t.Errorf("expected %q, got %q (%v)", "v2", got, err)
	}

	names, err := l.Names(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(names, []string{"header", "page"}) {
		t.Errorf("unexpected names %v", names)
	}

	err = l.Delete(ctx, "page")
	if err != nil {
		t.Fatal(err)
	}

	_, err = l.Load(ctx, "page")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}

	if err = l.Store(ctx, "", "x"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected invalid name, got %v", err)
	}
}

func TestSearchPath(t *testing.T) {
	const env = "MUSTACHE_REPO_TEST_PATH"

	sep := string(os.PathListSeparator)
	t.Setenv(env, "c"+sep+"a"+sep)

	got := SearchPath([]string{"a", "b", ""}, env)
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("search path mismatch (-want +got):\n%s", diff)
	}

	if got := SearchPath([]string{"x"}, ""); !slices.Equal(got, []string{"x"}) {
		t.Errorf("expected [x], got %v", got)
	}
}
