package utils

import (
	"encoding/hex"
	"io"

	"github.com/zeebo/blake3"
)

// HashContent returns a short blake3 identity for content. kind separates
// namespaces so a post body and an asset with equal bytes do not collide.
func HashContent(kind, content string) string {
	h := blake3.New()
	_, _ = io.WriteString(h, kind)
	_, _ = h.Write([]byte{0})
	_, _ = io.WriteString(h, content)
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}

// Fingerprint is the cache-busting suffix used in asset file names.
func Fingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:4])
}
