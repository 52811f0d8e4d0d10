// Package pkg holds the identity of the mustache command: its name,
// version, and the per-user directories derived from them.
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version embedded from the VERSION file.
var Version = strings.TrimSpace(version)

const (
	// Name is the command name. It appears in help text and selects the
	// default configuration and cache directories.
	Name = "mustache"
	// Description is a one-line summary used in help output.
	Description = "Logic-less template renderer"
)

// AuthorInfo is an author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
