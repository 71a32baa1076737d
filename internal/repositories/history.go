package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/arofill/internal/shared"
)

// HistoryEntry is one processed job id and what happened to it.
type HistoryEntry struct {
	ID        string
	RunID     string
	JobID     int
	Outcome   string
	Email     string
	CreatedAt time.Time
}

// HistoryRepository persists HistoryEntry rows.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create inserts a new history entry with a generated ID and timestamp.
func (r *HistoryRepository) Create(entry *HistoryEntry) error {
	entry.ID = shared.GenerateID()
	entry.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO run_history (id, run_id, job_id, outcome, email, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	var email any = entry.Email
	if entry.Email == "" {
		email = nil
	}

	if _, err := r.db.Exec(query, entry.ID, entry.RunID, entry.JobID, entry.Outcome, email, entry.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	return nil
}

// ListRecent returns up to limit entries, newest first.
func (r *HistoryRepository) ListRecent(limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, run_id, job_id, outcome, COALESCE(email, ''), created_at
		FROM run_history
		ORDER BY created_at DESC, job_id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.RunID, &e.JobID, &e.Outcome, &e.Email, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	return entries, nil
}

// ForRun returns a RunRecorder that stamps every record with runID.
func (r *HistoryRepository) ForRun(runID string) *RunRecorder {
	return &RunRecorder{repo: r, runID: runID}
}

// RunRecorder adapts HistoryRepository to the processor's Recorder interface.
type RunRecorder struct {
	repo  *HistoryRepository
	runID string
}

// Record persists one outcome for the recorder's run.
func (rr *RunRecorder) Record(jobID int, outcome string, email string) error {
	return rr.repo.Create(&HistoryEntry{
		RunID:   rr.runID,
		JobID:   jobID,
		Outcome: outcome,
		Email:   email,
	})
}
