package repo

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/readahead"
)

// DefaultExtension is the file extension appended to template names by a
// [DirLoader] when none is configured.
const DefaultExtension = ".mustache"

// DirLoader loads templates from files in a list of directories. The first
// directory containing a matching file wins.
//
// A name maps to the slash-separated path "<dir>/<name><ext>". Names that
// already end with the extension, or that name an existing file verbatim,
// are also accepted.
type DirLoader struct {
	dirs []string
	ext  string
}

// NewDirLoader returns a DirLoader searching dirs in order for files with
// extension ext. An empty ext selects [DefaultExtension].
func NewDirLoader(ext string, dirs ...string) *DirLoader {
	if ext == "" {
		ext = DefaultExtension
	}

	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return &DirLoader{dirs: slices.Clone(dirs), ext: ext}
}

// Dirs returns the search path.
func (l *DirLoader) Dirs() []string { return slices.Clone(l.dirs) }

// Extension returns the template file extension.
func (l *DirLoader) Extension() string { return l.ext }

func (l *DirLoader) candidates(name string) []string {
	if strings.HasSuffix(name, l.ext) {
		return []string{name}
	}

	return []string{name + l.ext, name}
}

// Load implements [Loader].
func (l *DirLoader) Load(ctx context.Context, name string) (string, error) {
	attr := slog.String("name", name)

	if !fs.ValidPath(name) || name == "." {
		return "", ErrInvalidName.With(attr)
	}

	for _, dir := range l.dirs {
		for _, file := range l.candidates(name) {
			if err := ctx.Err(); err != nil {
				return "", ErrLoad.Wrap(err).With(attr)
			}

			src, err := readFile(filepath.Join(dir, filepath.FromSlash(file)))

			switch {
			case err == nil:
				return src, nil

			case errors.Is(err, fs.ErrNotExist), errors.Is(err, errIsDir):
				continue

			default:
				return "", ErrLoad.Wrap(err).With(attr)
			}
		}
	}

	return "", ErrNotFound.With(attr, slog.Int("dirs", len(l.dirs)))
}

// Names implements [Lister]. A name present in several directories is
// listed once. Missing directories are skipped.
func (l *DirLoader) Names(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)

	for _, dir := range l.dirs {
		err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) && p == dir {
					return fs.SkipDir
				}

				return err
			}

			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			if d.IsDir() || !strings.HasSuffix(d.Name(), l.ext) {
				return nil
			}

			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return err
			}

			seen[strings.TrimSuffix(filepath.ToSlash(rel), l.ext)] = true

			return nil
		})
		if err != nil {
			return nil, ErrLoad.Wrap(err).With(slog.String("dir", dir))
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	slices.Sort(names)

	return names, nil
}

var errIsDir = errors.New("is a directory")

func readFile(name string) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	if info.IsDir() {
		return "", errIsDir
	}

	ra := readahead.NewReader(f)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
