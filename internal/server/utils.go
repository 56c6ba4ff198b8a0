package server

import (
	"path"
	"strings"

	"github.com/harunosuke/web/builder/utils"
)

// validatePath maps a request path onto a file under baseDir.
func validatePath(baseDir, userPath string) (string, error) {
	return utils.SafeJoin(baseDir, userPath)
}

// normalizeRequestPath cleans the request path to forward-slash form.
func normalizeRequestPath(rawPath string) string {
	rawPath = strings.ReplaceAll(rawPath, "\\", "/")
	clean := path.Clean("/" + rawPath)
	if strings.HasSuffix(rawPath, "/") && clean != "/" {
		clean += "/"
	}
	return clean
}

// isHashedAsset reports whether filename carries a content fingerprint,
// as in theme.1a2b3c4d.css.
func isHashedAsset(filename string) bool {
	parts := strings.Split(filename, ".")
	if len(parts) < 3 {
		return false
	}
	hash := parts[len(parts)-2]
	if len(hash) < 8 || len(hash) > 12 {
		return false
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
