package cache

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/kedare/netscope/internal/cache/migrations"
	"github.com/kedare/netscope/internal/logger"
)

const (
	createMetadataTable = `
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`

	createResponsesTable = `
		CREATE TABLE IF NOT EXISTS responses (
			api TEXT NOT NULL,
			path TEXT NOT NULL,
			query TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL,
			items_json BLOB NOT NULL,
			item_count INTEGER NOT NULL,
			stored_at INTEGER NOT NULL,
			PRIMARY KEY (api, path, query)
		)`
)

// prepare creates the base schema and applies pending migrations.
func prepare(db *sql.DB) error {
	for _, stmt := range []string{`PRAGMA busy_timeout = 5000`, createMetadataTable, createResponsesTable} {
		logSQL(stmt)

		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	current, err := schemaVersion(db)
	if err != nil {
		return err
	}

	if current == 0 {
		current = 1
	}

	for _, m := range migrations.Pending(current) {
		logger.Log.Debugf("Applying cache migration v%d: %s", m.Version(), m.Description())

		if err := m.Up(db); err != nil {
			return fmt.Errorf("migration v%d failed: %w", m.Version(), err)
		}
	}

	return setSchemaVersion(db, migrations.LatestVersion())
}

// schemaVersion returns 0 for a new database.
func schemaVersion(db *sql.DB) (int, error) {
	var version int

	query := `SELECT value FROM metadata WHERE key = 'schema_version'`
	logSQL(query)

	err := db.QueryRow(query).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}

	return version, nil
}

func setSchemaVersion(db *sql.DB, version int) error {
	query := `INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)`
	logSQL(query, version)

	if _, err := db.Exec(query, version); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}

	return nil
}
