// Package assets embeds the site templates and static files.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var files embed.FS

// Templates returns the template tree rooted at templates/.
func Templates() fs.FS {
	sub, _ := fs.Sub(files, "templates")
	return sub
}

// Static returns the static tree rooted at static/.
func Static() fs.FS {
	sub, _ := fs.Sub(files, "static")
	return sub
}
