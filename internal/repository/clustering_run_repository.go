package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/neko-san1432/citizenlink-insights-go/internal/models"
)

// ClusteringRunRepository handles database operations for clustering runs
type ClusteringRunRepository struct {
	db *sql.DB
}

// NewClusteringRunRepository creates a new clustering run repository
func NewClusteringRunRepository(db *sql.DB) *ClusteringRunRepository {
	return &ClusteringRunRepository{db: db}
}

const runColumns = `id, generation_id, run_trigger, status, radius_km, min_points,
		complaints_scanned, clusters_found, duration_ms, error_message,
		started_at, completed_at`

func scanRun(row rowScanner) (*models.ClusteringRun, error) {
	run := &models.ClusteringRun{}
	var startedAt int64
	var completedAt sql.NullInt64

	err := row.Scan(
		&run.ID,
		&run.GenerationID,
		&run.Trigger,
		&run.Status,
		&run.RadiusKm,
		&run.MinPoints,
		&run.ComplaintsScanned,
		&run.ClustersFound,
		&run.DurationMs,
		&run.ErrorMessage,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	run.StartedAt = time.UnixMilli(startedAt).UTC()
	if completedAt.Valid {
		t := time.UnixMilli(completedAt.Int64).UTC()
		run.CompletedAt = &t
	}
	return run, nil
}

// Create inserts a run and sets its ID
func (r *ClusteringRunRepository) Create(ctx context.Context, run *models.ClusteringRun) error {
	query := `
		INSERT INTO clustering_runs (
			generation_id, run_trigger, status, radius_km, min_points,
			complaints_scanned, clusters_found, duration_ms, error_message, started_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		run.GenerationID,
		run.Trigger,
		run.Status,
		run.RadiusKm,
		run.MinPoints,
		run.ComplaintsScanned,
		run.ClustersFound,
		run.DurationMs,
		run.ErrorMessage,
		run.StartedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create clustering run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	run.ID = id
	return nil
}

// Finish stores the final status and results of a run
func (r *ClusteringRunRepository) Finish(ctx context.Context, run *models.ClusteringRun) error {
	var completedAt interface{}
	if run.CompletedAt != nil {
		completedAt = run.CompletedAt.UnixMilli()
	}

	query := `
		UPDATE clustering_runs
		SET status = ?, complaints_scanned = ?, clusters_found = ?, duration_ms = ?,
			error_message = ?, completed_at = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		run.Status,
		run.ComplaintsScanned,
		run.ClustersFound,
		run.DurationMs,
		run.ErrorMessage,
		completedAt,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update clustering run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by ID
func (r *ClusteringRunRepository) GetByID(ctx context.Context, id int64) (*models.ClusteringRun, error) {
	query := `SELECT ` + runColumns + ` FROM clustering_runs WHERE id = ?`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("clustering run %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clustering run: %w", err)
	}
	return run, nil
}

// List retrieves runs newest first
func (r *ClusteringRunRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.ClusteringRun, error) {
	query := `SELECT ` + runColumns + ` FROM clustering_runs WHERE 1=1`

	args := []interface{}{}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY started_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clustering runs: %w", err)
	}
	defer rows.Close()

	runs := []*models.ClusteringRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clustering run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clustering runs: %w", err)
	}

	return runs, nil
}
