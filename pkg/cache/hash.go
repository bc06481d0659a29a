package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON returns the digest of v's JSON encoding. A value that cannot be
// encoded hashes like null.
func HashJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte("null")
	}
	return Hash(data)
}

// joinKey joins segments with colons and appends the digest of opts.
func joinKey(opts any, segments ...string) string {
	return strings.Join(append(segments, HashJSON(opts)), ":")
}
