package config

import (
	"os"
	"regexp"
)

// envRef matches ${NAME} and ${NAME:-fallback}.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnv substitutes ${NAME} and ${NAME:-fallback} references in input.
//
// A set, non-empty variable wins. Otherwise the fallback is used, and a
// reference without one expands to the empty string. Missing values surface
// later in Validate (for example an empty S3 bucket).
func ExpandEnv(input string) string {
	return envRef.ReplaceAllStringFunc(input, func(ref string) string {
		m := envRef.FindStringSubmatch(ref)
		if value := os.Getenv(m[1]); value != "" {
			return value
		}
		return m[2]
	})
}
