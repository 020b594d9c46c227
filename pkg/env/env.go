package env

import "os"

// Get reads key from the process environment and falls back to def when the
// variable is unset or empty.
func Get(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}
