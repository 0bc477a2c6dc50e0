// Package env reads raw environment variables for the few settings that
// must resolve before the typed config is loaded, such as log formatting.
package env

import "os"

// Get looks up key and falls back to the given default when it is unset
// or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
