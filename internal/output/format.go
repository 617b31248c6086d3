// Package output renders report tables for the terminal and for machines.
package output

import (
	"fmt"
	"os"
	"strings"
)

// EnvFormat overrides the default output format.
const EnvFormat = "NETSCOPE_OUTPUT"

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

// Formats lists the supported formats.
var Formats = []string{FormatTable, FormatJSON, FormatCSV}

// DefaultFormat returns the preferred output format unless NETSCOPE_OUTPUT is set to a supported value.
func DefaultFormat(preferred string, allowed []string) string {
	env := strings.TrimSpace(os.Getenv(EnvFormat))
	if env == "" {
		return preferred
	}

	env = strings.ToLower(env)
	for _, option := range allowed {
		if env == option {
			return env
		}
	}

	return preferred
}

// ParseFormat normalizes a user supplied format name.
func ParseFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	for _, option := range Formats {
		if format == option {
			return format, nil
		}
	}

	return "", fmt.Errorf("unsupported output format %q (expected one of %s)", format, strings.Join(Formats, ", "))
}

// Machine reports whether format is meant for other programs, in which case
// nothing decorative may reach stdout.
func Machine(format string) bool {
	return format == FormatJSON || format == FormatCSV
}
