package repositories

import (
	"database/sql"
	"fmt"
)

// Migrate creates the run history schema if it does not exist.
//
// A single table with no versioning; the schema is small enough that
// additive changes can ship as further IF NOT EXISTS statements.
func Migrate(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS run_history (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			job_id INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			email TEXT,
			created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_run_history_run_id ON run_history(run_id);
		CREATE INDEX IF NOT EXISTS idx_run_history_job_id ON run_history(job_id);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create run_history schema: %w", err)
	}

	return nil
}
