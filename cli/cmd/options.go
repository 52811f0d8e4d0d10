package cmd

import (
	"context"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/mustache"
	"github.com/ardnew/mustache/log"
	"github.com/ardnew/mustache/repo"
)

// Options are the global flags that select templates and data.
type Options struct {
	Partials []string `help:"Directory searched for templates and partials, before MUSTACHE_PATH" placeholder:"DIR"        short:"I" type:"path"`
	Ext      string   `default:"${templateExt}"                                                   help:"Template file extension"                        placeholder:"EXT"`
	DB       string   `help:"SQLite database of templates, searched after directories"           name:"db"                                             placeholder:"DSN"`
	Delims   string   `help:"Initial tag delimiters, such as '<% %>'"                             placeholder:"'OPEN CLOSE'"`
	MaxDepth int      `default:"${templateMaxDepth}"                                              help:"Nesting limit for partials and lambdas"`
	Data     []string `help:"YAML or JSON data file, merged in order ('-' for stdin)"             placeholder:"FILE"                                    short:"d"`
	Set      []string `help:"Set data KEY to the result of expression EXPR"                      placeholder:"KEY=EXPR"                                sep:"none"`
}

// Vars returns the kong variables referenced by the option defaults.
func (Options) Vars() kong.Vars {
	return kong.Vars{
		"templateExt":      repo.DefaultExtension,
		"templateMaxDepth": strconv.Itoa(mustache.DefaultMaxDepth),
	}
}

// Group returns the help group of the template options.
func (Options) Group() kong.Group {
	return kong.Group{Key: "template", Title: "Template options"}
}

type optionsKey struct{}

// WithOptions returns a new context.Context carrying the global options.
func WithOptions(ctx context.Context, o *Options) context.Context {
	return context.WithValue(ctx, optionsKey{}, o)
}

// optionsFrom returns the options stored by [WithOptions], or the zero
// options if there are none.
func optionsFrom(ctx context.Context) *Options {
	if o, ok := ctx.Value(optionsKey{}).(*Options); ok && o != nil {
		return o
	}

	return &Options{}
}

func (o *Options) compileOptions() ([]mustache.Option, error) {
	opts := []mustache.Option{mustache.WithMaxDepth(o.MaxDepth)}

	if strings.TrimSpace(o.Delims) != "" {
		d, err := mustache.ParseDelimiters(o.Delims)
		if err != nil {
			return nil, err
		}

		opts = append(opts, mustache.WithDelimiters(d))
	}

	return opts, nil
}

// repository builds a repository over dirs, the --partials directories,
// $MUSTACHE_PATH, and the --db database. The returned function releases the
// database.
func (o *Options) repository(
	ctx context.Context,
	dirs ...string,
) (*repo.Repository, func() error, error) {
	copts, err := o.compileOptions()
	if err != nil {
		return nil, nil, err
	}

	path := repo.SearchPath(append(dirs, o.Partials...), repo.DefaultPathEnv)
	if len(path) == 0 {
		path = []string{"."}
	}

	ext := o.Ext
	if ext == "" {
		ext = repo.DefaultExtension
	}

	var (
		loader repo.Loader = repo.NewDirLoader(ext, path...)
		closer             = func() error { return nil }
	)

	if o.DB != "" {
		sl, err := repo.OpenSQLite(ctx, o.DB)
		if err != nil {
			return nil, nil, err
		}

		loader = repo.Chain(loader, sl)
		closer = sl.Close
	}

	log.DebugContext(ctx, "template repository",
		slog.Any("path", path),
		slog.String("ext", ext),
		slog.String("db", o.DB),
	)

	r := repo.New(loader,
		repo.WithCompileOptions(copts...),
		repo.WithLogger(log.Default()),
		repo.WithContext(ctx),
	)

	return r, closer, nil
}

// template returns the template named by name: stdin for "-", an existing
// file, or else a template from the repository. The directory of a file
// is searched first for its partials.
func (o *Options) template(
	ctx context.Context,
	name string,
) (*mustache.Template, func() error, error) {
	var (
		dirs   []string
		source string
		direct = name == stdinSource || isFile(name)
	)

	if direct {
		var err error

		source, err = readSource(name)
		if err != nil {
			return nil, nil, err
		}

		if name != stdinSource {
			dirs = append(dirs, filepath.Dir(name))
		}
	}

	r, closer, err := o.repository(ctx, dirs...)
	if err != nil {
		return nil, nil, err
	}

	var t *mustache.Template

	if direct {
		t, err = r.Compile(ctx, source)
		if err == nil {
			t = t.Named(name)
		}
	} else {
		t, err = r.Template(ctx, name)
	}

	if err != nil {
		_ = closer()

		return nil, nil, err
	}

	return t, closer, nil
}

// data loads the --data files and applies the --set assignments.
func (o *Options) data(ctx context.Context) (map[string]any, error) {
	data, err := loadData(ctx, o.Data...)
	if err != nil {
		return nil, err
	}

	err = applySets(data, o.Set)
	if err != nil {
		return nil, err
	}

	return data, nil
}
