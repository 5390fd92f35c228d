// Package env reads configuration overrides from environment variables,
// falling back to a caller-supplied default when unset, empty, or
// unparseable.
package env

import (
	"os"
	"strconv"
)

// Str returns the value of the environment variable key, or fallback if
// unset/empty.
func Str(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

// Int returns the parsed integer value of key, or fallback if unset,
// empty, or not a valid integer.
func Int(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

// Float returns the parsed float64 value of key, or fallback if unset,
// empty, or not a valid float.
func Float(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return f
}

// Bool returns the parsed boolean value of key, or fallback if unset,
// empty, or not a valid boolean (accepts the same forms as strconv.ParseBool).
func Bool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}
