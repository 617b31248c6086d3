package migrations

import "database/sql"

func init() {
	Register(&v3Endpoint{})
}

// v3Endpoint scopes responses to the API endpoint that served them. Rows
// written before it belong to the public endpoint.
type v3Endpoint struct{}

func (m *v3Endpoint) Version() int {
	return 3
}

func (m *v3Endpoint) Description() string {
	return "Add endpoint column to responses"
}

func (m *v3Endpoint) Up(db *sql.DB) error {
	return ExecStatements(db, []string{
		`ALTER TABLE responses ADD COLUMN endpoint TEXT NOT NULL DEFAULT ''`,
	})
}
