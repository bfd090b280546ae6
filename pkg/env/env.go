package env

import "os"

// Get reads key from the process environment. Unset and empty values both
// resolve to the fallback.
func Get(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
