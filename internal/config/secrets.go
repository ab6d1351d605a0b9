package config

import (
	"os"
	"strings"
)

// ResolveSecret expands a secret reference into its value. Supported forms:
//
//	env:NAME   -> value of the environment variable NAME
//	file:PATH  -> trimmed contents of PATH
//	anything else is returned as-is (trimmed)
//
// Unresolvable references yield the empty string, which downstream code
// treats as "not configured" rather than an error.
func ResolveSecret(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(value, "env:"):
		return strings.TrimSpace(os.Getenv(strings.TrimPrefix(value, "env:")))
	case strings.HasPrefix(value, "file:"):
		data, err := os.ReadFile(strings.TrimPrefix(value, "file:"))
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(data))
	default:
		return value
	}
}
