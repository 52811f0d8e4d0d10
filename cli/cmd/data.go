package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/expr-lang/expr"
	"github.com/goccy/go-yaml"
)

// loadData decodes each YAML or JSON file and merges the documents in order
// into one map. Later documents override earlier ones key by key, and nested
// maps are merged rather than replaced.
func loadData(ctx context.Context, files ...string) (map[string]any, error) {
	data := map[string]any{}

	for _, name := range uniqueFiles(files) {
		buf, err := readData(name)
		if err != nil {
			return nil, ErrReadData.With(slog.String("file", name)).Wrap(err)
		}

		var doc map[string]any

		err = yaml.UnmarshalContext(ctx, buf, &doc)
		if err != nil {
			return nil, ErrReadData.With(slog.String("file", name)).Wrap(err)
		}

		merge(data, doc)
	}

	return data, nil
}

func readData(name string) ([]byte, error) {
	if name == stdinSource {
		return io.ReadAll(os.Stdin)
	}

	return os.ReadFile(name)
}

func merge(dst, src map[string]any) {
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				merge(dm, sm)

				continue
			}
		}

		dst[k] = v
	}
}

// fileKey uniquely identifies a file by its device and inode numbers.
type fileKey struct {
	dev uint64
	ino uint64
}

func makeFileKey(info os.FileInfo) (fileKey, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileKey{}, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// uniqueFiles drops files named more than once, comparing device and inode
// so that symlinks and relative paths are recognized. Stdin is read once,
// after every regular file. Files that cannot be resolved are kept so that
// reading them reports the error.
func uniqueFiles(files []string) []string {
	seen := make(map[fileKey]bool)
	out := make([]string, 0, len(files))
	stdin := false

	for _, name := range files {
		if name == stdinSource {
			stdin = true

			continue
		}

		key, ok := resolveFileKey(name)
		if ok {
			if seen[key] {
				continue
			}

			seen[key] = true
		}

		out = append(out, name)
	}

	if stdin {
		out = append(out, stdinSource)
	}

	return out
}

func resolveFileKey(name string) (fileKey, bool) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fileKey{}, false
	}

	return makeFileKey(info)
}

// applySets evaluates each KEY=EXPR assignment against data and stores the
// result at the dotted KEY, creating intermediate maps as needed.
// Assignments apply in order, so later expressions see earlier results.
func applySets(data map[string]any, sets []string) error {
	for _, set := range sets {
		key, src, ok := strings.Cut(set, "=")

		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return ErrSetData.With(slog.String("set", set))
		}

		program, err := expr.Compile(src, expr.Env(data))
		if err != nil {
			return ErrSetData.With(slog.String("key", key)).Wrap(err)
		}

		v, err := expr.Run(program, data)
		if err != nil {
			return ErrSetData.With(slog.String("key", key)).Wrap(err)
		}

		err = setPath(data, key, v)
		if err != nil {
			return err
		}
	}

	return nil
}

func setPath(data map[string]any, key string, v any) error {
	names := strings.Split(key, ".")
	m := data

	for i, name := range names[:len(names)-1] {
		next, exists := m[name]
		if !exists {
			child := map[string]any{}
			m[name] = child
			m = child

			continue
		}

		child, ok := next.(map[string]any)
		if !ok {
			return ErrSetData.With(
				slog.String("key", key),
				slog.String("conflict", strings.Join(names[:i+1], ".")),
			)
		}

		m = child
	}

	m[names[len(names)-1]] = v

	return nil
}
