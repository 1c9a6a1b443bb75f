// Package pkg describes the prestyle module: its name, version, and the
// per-user directories it keeps state in.
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the module, embedded at build time.
var Version = strings.TrimSpace(version)

const (
	// Name is the command and module identifier. It appears in help
	// text and names the configuration and cache directories.
	Name = "prestyle"
	// Description is a short summary used in help output.
	Description = "Static evaluator for TypeScript style declarations"
	// EnvPrefix prefixes the environment variables the command reads.
	EnvPrefix = "PRESTYLE_"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
