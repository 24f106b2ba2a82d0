// Package identity derives the content-identity hash for documents.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent returns the SHA-256 hex digest of content. Identical content
// always yields the identical hash, so a changed digest means changed content.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
