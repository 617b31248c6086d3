// Package migrations holds the schema migrations of the response cache.
package migrations

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// Migration upgrades the cache schema to Version.
type Migration interface {
	// Version is the schema version after Up has run. Versions start at 2,
	// version 1 being the base schema.
	Version() int
	Description() string
	// Up must be safe to run more than once.
	Up(db *sql.DB) error
}

var registry []Migration

// Register adds m to the registry. Called from init functions.
func Register(m Migration) {
	registry = append(registry, m)
}

// All returns every registered migration sorted by version.
func All() []Migration {
	sorted := append([]Migration(nil), registry...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Version() < sorted[j].Version()
	})

	return sorted
}

// LatestVersion returns the highest known schema version.
func LatestVersion() int {
	latest := 1
	for _, m := range registry {
		if m.Version() > latest {
			latest = m.Version()
		}
	}

	return latest
}

// Pending returns the migrations newer than current, in version order.
func Pending(current int) []Migration {
	var pending []Migration
	for _, m := range All() {
		if m.Version() > current {
			pending = append(pending, m)
		}
	}

	return pending
}

// ExecStatements runs statements in order, ignoring "already exists" and
// "duplicate column" errors so migrations stay idempotent.
func ExecStatements(db *sql.DB, statements []string) error {
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil && !isIgnorable(err) {
			return fmt.Errorf("failed to execute statement: %w", err)
		}
	}

	return nil
}

func isIgnorable(err error) bool {
	msg := err.Error()

	return strings.Contains(msg, "duplicate column") || strings.Contains(msg, "already exists")
}
