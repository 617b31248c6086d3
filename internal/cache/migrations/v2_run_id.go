package migrations

import "database/sql"

func init() {
	Register(&v2RunID{})
}

// v2RunID records which collection run stored a response.
type v2RunID struct{}

func (m *v2RunID) Version() int {
	return 2
}

func (m *v2RunID) Description() string {
	return "Add run_id column and expiry index to responses"
}

func (m *v2RunID) Up(db *sql.DB) error {
	return ExecStatements(db, []string{
		`ALTER TABLE responses ADD COLUMN run_id TEXT NOT NULL DEFAULT ''`,
		`CREATE INDEX IF NOT EXISTS idx_responses_stored_at ON responses(stored_at)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_run_id ON responses(run_id)`,
	})
}
