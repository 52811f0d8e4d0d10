package repo

import (
	"os"
	"path/filepath"

	"github.com/ardnew/mung"
)

// DefaultPathEnv names the environment variable holding additional
// template directories.
const DefaultPathEnv = "MUSTACHE_PATH"

// SearchPath returns dirs followed by the directories listed in the
// environment variable env, in order, without empty or duplicate entries.
// An empty env reads no variable.
func SearchPath(dirs []string, env string) []string {
	var subject string
	if env != "" {
		subject = os.Getenv(env)
	}

	joined := mung.Make(
		mung.WithSubjectItems(subject),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
	).String()

	seen := make(map[string]bool)

	var path []string

	for _, dir := range filepath.SplitList(joined) {
		if dir == "" {
			continue
		}

		dir = filepath.Clean(dir)
		if seen[dir] {
			continue
		}

		seen[dir] = true
		path = append(path, dir)
	}

	return path
}
