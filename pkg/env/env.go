// Package env reads raw process environment values that sit outside the
// STOREFRONT_ config surface, such as LOG_FORMAT.
package env

import "os"

// Get returns the named variable's value, or fallback when unset or empty.
func Get(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}
