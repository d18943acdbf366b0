package cacheinfra

import "strings"

// matchPattern reports whether key matches a glob pattern where '*' matches
// any run of characters, including none. Every other character is literal.
// This mirrors redis SCAN MATCH semantics for the patterns the pipeline
// emits ("*<tagKey>~*").
func matchPattern(pattern, key string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == key
	}

	parts := strings.Split(pattern, "*")

	// Anchored prefix before the first '*'.
	if parts[0] != "" {
		if !strings.HasPrefix(key, parts[0]) {
			return false
		}
		key = key[len(parts[0]):]
	}

	// Anchored suffix after the last '*'.
	last := parts[len(parts)-1]
	if last != "" {
		if !strings.HasSuffix(key, last) {
			return false
		}
		key = key[:len(key)-len(last)]
	}

	// Interior segments must appear in order.
	for _, part := range parts[1 : len(parts)-1] {
		if part == "" {
			continue
		}
		idx := strings.Index(key, part)
		if idx < 0 {
			return false
		}
		key = key[idx+len(part):]
	}
	return true
}
