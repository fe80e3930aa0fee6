package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// repoKey builds "kind:<sha256>" over a repository URL and coordinate
// fields. Fields are NUL separated so "g:a" + "b" and "g" + "a:b" differ,
// and a trailing slash on the URL does not split one repository's entries.
func repoKey(kind, repoURL string, fields ...string) string {
	h := sha256.New()
	h.Write([]byte(strings.TrimRight(repoURL, "/")))
	for _, f := range fields {
		h.Write([]byte{0})
		h.Write([]byte(f))
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// digest is the hex SHA-256 of data; FileCache shards on its first two
// characters.
func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
