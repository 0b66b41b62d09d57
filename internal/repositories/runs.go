package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"syncra/internal/models"
	"syncra/internal/shared"
)

// RunRepository implements models.Repository[*models.RunRecord] for sync run
// history.
//
// Reports are stored as JSON text; the indexed columns (mode, playlist) exist
// for listing and filtering without decoding every report.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Save persists a completed report as a new run record. Satisfies
// tasks.RunStore.
func (r *RunRepository) Save(report *models.SyncReport) error {
	return r.Create(models.NewRunRecord(0, *report))
}

// Create inserts a new run record with generated ID and sequence
func (r *RunRepository) Create(run *models.RunRecord) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	run.SetSequence(sequence)

	id := shared.GenerateID()
	run.SetID(id)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	report := run.Report()
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	query := `
		INSERT INTO runs (id, sequence, run_id, mode, playlist_id, playlist_name, report, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		report.RunID,
		report.Mode,
		report.PlaylistID,
		report.PlaylistName,
		string(payload),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run record by its storage ID
func (r *RunRepository) Get(id string) (*models.RunRecord, error) {
	query := `
		SELECT id, sequence, report, created_at, updated_at
		FROM runs
		WHERE id = ?
	`

	return scanRun(r.db.QueryRow(query, id).Scan)
}

// GetByRunID retrieves a run record by the report's run ID
func (r *RunRepository) GetByRunID(runID string) (*models.RunRecord, error) {
	query := `
		SELECT id, sequence, report, created_at, updated_at
		FROM runs
		WHERE run_id = ?
	`

	return scanRun(r.db.QueryRow(query, runID).Scan)
}

// Delete removes a run record by ID
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", id)
	}

	return nil
}

// List retrieves run records matching the given criteria, newest first
func (r *RunRepository) List(criteria map[string]any) ([]*models.RunRecord, error) {
	query := `
		SELECT id, sequence, report, created_at, updated_at
		FROM runs
		WHERE 1 = 1
	`

	args := []any{}

	if mode, ok := criteria["mode"].(string); ok && mode != "" {
		query += " AND mode = ?"
		args = append(args, mode)
	}

	if playlistID, ok := criteria["playlist_id"].(string); ok && playlistID != "" {
		query += " AND playlist_id = ?"
		args = append(args, playlistID)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.RunRecord
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// scanRun scans one row into a [models.RunRecord]
func scanRun(scan func(dest ...any) error) (*models.RunRecord, error) {
	var (
		id        string
		sequence  int
		payload   string
		createdAt time.Time
		updatedAt time.Time
	)

	err := scan(&id, &sequence, &payload, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	var report models.SyncReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}

	run := models.NewRunRecord(sequence, report)
	run.SetID(id)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)

	return run, nil
}
