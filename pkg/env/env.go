// Package env provides raw environment lookups for the few values needed
// before the FOODDASH_-prefixed configuration is loaded, such as the level
// the bootstrap logger starts with.
package env

import (
	"os"
	"strings"
)

// Get returns the value of the given environment variable or a fallback.
// Whitespace-only values count as unset.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
