package utils

import (
	"hash/fnv"
	"strings"
)

// StableHash returns a deterministic FNV-1a hash of the parts joined by "|".
func StableHash(parts ...string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.Join(parts, "|")))
	return h.Sum64()
}

// Pick chooses one option deterministically for the given key parts.
// It returns "" when options is empty.
func Pick(options []string, parts ...string) string {
	if len(options) == 0 {
		return ""
	}
	return options[StableHash(parts...)%uint64(len(options))]
}
