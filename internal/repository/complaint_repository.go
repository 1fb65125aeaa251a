package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/neko-san1432/citizenlink-insights-go/internal/models"
)

// ComplaintRepository handles database operations for complaints
type ComplaintRepository struct {
	db *sql.DB
}

// NewComplaintRepository creates a new complaint repository
func NewComplaintRepository(db *sql.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

const complaintColumns = `id, title, type, category, subcategory, priority, workflow_status,
		latitude, longitude, submitted_at`

func scanComplaint(row rowScanner) (models.Complaint, error) {
	var c models.Complaint
	var lat, lng sql.NullFloat64
	var submittedAt int64

	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Type,
		&c.Category,
		&c.Subcategory,
		&c.Priority,
		&c.WorkflowStatus,
		&lat,
		&lng,
		&submittedAt,
	)
	if err != nil {
		return c, err
	}

	if lat.Valid {
		c.Latitude = &lat.Float64
	}
	if lng.Valid {
		c.Longitude = &lng.Float64
	}
	c.SubmittedAt = time.UnixMilli(submittedAt).UTC()
	return c, nil
}

// Create inserts a complaint
func (r *ComplaintRepository) Create(ctx context.Context, c *models.Complaint) error {
	query := `
		INSERT INTO complaints (` + complaintColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Title,
		c.Type,
		c.Category,
		c.Subcategory,
		c.Priority,
		c.WorkflowStatus,
		c.Latitude,
		c.Longitude,
		c.SubmittedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}
	return nil
}

// GetByID retrieves a complaint by ID
func (r *ComplaintRepository) GetByID(ctx context.Context, id string) (*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = ?`

	c, err := scanComplaint(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("complaint %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get complaint: %w", err)
	}
	return &c, nil
}

// ListGeolocated retrieves complaints that have both coordinates, oldest first
// unless filter.NewestFirst is set
func (r *ComplaintRepository) ListGeolocated(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	query := `
		SELECT ` + complaintColumns + `
		FROM complaints
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
	`

	args := []interface{}{}
	if filter.Type != "" {
		query += " AND type = ?"
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		query += " AND workflow_status = ?"
		args = append(args, filter.Status)
	}
	if filter.ExcludeStatus != "" {
		query += " AND workflow_status != ?"
		args = append(args, filter.ExcludeStatus)
	}
	if filter.SubmittedFrom != nil {
		query += " AND submitted_at >= ?"
		args = append(args, filter.SubmittedFrom.UnixMilli())
	}
	if filter.SubmittedTo != nil {
		query += " AND submitted_at <= ?"
		args = append(args, filter.SubmittedTo.UnixMilli())
	}
	if filter.SubmittedAfter != nil {
		query += " AND submitted_at > ?"
		args = append(args, filter.SubmittedAfter.UnixMilli())
	}

	if filter.NewestFirst {
		query += " ORDER BY submitted_at DESC, id ASC"
	} else {
		query += " ORDER BY submitted_at ASC, id ASC"
	}
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	defer rows.Close()

	complaints := []models.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan complaint: %w", err)
		}
		complaints = append(complaints, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate complaints: %w", err)
	}

	return complaints, nil
}

// CountGeolocatedSince counts geolocated complaints submitted strictly after
// since, or all geolocated complaints when since is nil
func (r *ComplaintRepository) CountGeolocatedSince(ctx context.Context, since *time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM complaints
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
	`

	args := []interface{}{}
	if since != nil {
		query += " AND submitted_at > ?"
		args = append(args, since.UnixMilli())
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count complaints: %w", err)
	}
	return count, nil
}
