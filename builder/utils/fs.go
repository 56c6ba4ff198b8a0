package utils

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

func WriteFileVFS(fs afero.Fs, name string, data []byte) error {
	if err := fs.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", name, err)
	}
	if err := afero.WriteFile(fs, name, data, 0644); err != nil {
		return fmt.Errorf("failed to write VFS file %s: %w", name, err)
	}
	return nil
}

// SafeJoin joins a URL path onto root, refusing anything that escapes it.
func SafeJoin(root, urlPath string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(urlPath, "\\", "/"))
	joined := filepath.Join(root, filepath.FromSlash(clean))
	rel, err := filepath.Rel(root, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected: %q escapes %q", urlPath, root)
	}
	return joined, nil
}
