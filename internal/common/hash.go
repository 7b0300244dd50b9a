package common

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// CacheKey hashes the parts of a calculation input into a fixed-length key.
// Parts are joined with "|" so ("1", "23") and ("12", "3") differ.
func CacheKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
