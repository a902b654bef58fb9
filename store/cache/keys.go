package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// KeyDelimiter separates the type name and each parameter inside a cache
// key. Parameters must never contain it unescaped; free-form parameters go
// through SafeParam first.
const KeyDelimiter = ":"

// maxRawParamLen bounds how long a parameter may be before SafeParam
// replaces it with a digest, keeping keys readable in logs and reports.
const maxRawParamLen = 64

// ErrReservedDelimiter is returned by BuildKey when the type name or a
// parameter contains the key delimiter, which would make the resulting key
// collide with a differently scoped one.
var ErrReservedDelimiter = errors.New("cache key segment contains reserved delimiter")

// BuildKey returns the canonical key for a cache type and its ordered
// parameters: the segments joined by KeyDelimiter. It is pure and
// deterministic, so identical inputs always produce identical keys across
// restarts. An empty parameter list yields the bare type name, which is
// itself a valid key.
//
// A segment containing the delimiter is a programming error and fails fast
// with ErrReservedDelimiter instead of silently producing a colliding key.
func BuildKey(typeName string, params ...string) (string, error) {
	if typeName == "" {
		return "", errors.New("cache key type name is empty")
	}
	if strings.Contains(typeName, KeyDelimiter) {
		return "", errors.Wrapf(ErrReservedDelimiter, "type %q", typeName)
	}
	for _, p := range params {
		if strings.Contains(p, KeyDelimiter) {
			return "", errors.Wrapf(ErrReservedDelimiter, "param %q for type %q", p, typeName)
		}
	}

	if len(params) == 0 {
		return typeName, nil
	}

	var b strings.Builder
	b.Grow(len(typeName) + len(params)*8)
	b.WriteString(typeName)
	for _, p := range params {
		b.WriteString(KeyDelimiter)
		b.WriteString(p)
	}
	return b.String(), nil
}

// SafeParam prepares a free-form value (serialized filters, search text) for
// use as a key parameter. Clean short values pass through unchanged so keys
// stay readable; anything containing the delimiter or longer than
// maxRawParamLen is replaced by a deterministic short digest.
func SafeParam(s string) string {
	if len(s) <= maxRawParamLen && !strings.Contains(s, KeyDelimiter) {
		return s
	}
	return keyHash(s)
}

// TypeOf returns the cache type a key belongs to: the segment before the
// first delimiter, or the whole key when it has no parameters.
func TypeOf(key string) string {
	if i := strings.Index(key, KeyDelimiter); i >= 0 {
		return key[:i]
	}
	return key
}

// keyHash produces a 16-character hex digest of s.
func keyHash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])[:16]
}
