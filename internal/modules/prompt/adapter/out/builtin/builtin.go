// Package builtin ships the prompts available without any configuration.
package builtin

import (
	"embed"
	"io/fs"
)

//go:embed prompts/*.md
var files embed.FS

// FS returns the embedded prompt notes rooted at their directory.
func FS() fs.FS {
	sub, err := fs.Sub(files, "prompts")
	if err != nil {
		panic(err)
	}
	return sub
}
