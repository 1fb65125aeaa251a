package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neko-san1432/citizenlink-insights-go/internal/database"
	"github.com/neko-san1432/citizenlink-insights-go/internal/models"
)

// ClusterRepository handles database operations for complaint clusters
type ClusterRepository struct {
	db *sql.DB
}

// NewClusterRepository creates a new cluster repository
func NewClusterRepository(db *sql.DB) *ClusterRepository {
	return &ClusterRepository{db: db}
}

// ReplaceActive marks every active cluster inactive and inserts clusters as
// the new active generation, in one transaction. An empty slice only
// deactivates.
func (r *ClusterRepository) ReplaceActive(ctx context.Context, clusters []models.ComplaintCluster) error {
	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"UPDATE complaint_clusters SET status = ? WHERE status = ?",
			models.ClusterStatusInactive, models.ClusterStatusActive,
		)
		if err != nil {
			return fmt.Errorf("failed to deactivate clusters: %w", err)
		}

		if len(clusters) == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO complaint_clusters (
				id, generation_id, cluster_name, center_lat, center_lng, radius_meters,
				complaint_ids, pattern_type, dominant_category, first_reported_at,
				status, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare cluster insert: %w", err)
		}
		defer stmt.Close()

		for i := range clusters {
			c := &clusters[i]
			ids, err := json.Marshal(c.ComplaintIDs)
			if err != nil {
				return fmt.Errorf("failed to encode complaint ids: %w", err)
			}

			_, err = stmt.ExecContext(ctx,
				c.ID,
				c.GenerationID,
				c.ClusterName,
				c.CenterLat,
				c.CenterLng,
				c.RadiusMeters,
				string(ids),
				c.PatternType,
				c.DominantCategory,
				c.FirstReportedAt.UnixMilli(),
				c.Status,
				c.CreatedAt.UnixMilli(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert cluster %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

// ListActive retrieves the active generation in insertion order
func (r *ClusterRepository) ListActive(ctx context.Context) ([]models.ComplaintCluster, error) {
	query := `
		SELECT id, generation_id, cluster_name, center_lat, center_lng, radius_meters,
			   complaint_ids, pattern_type, dominant_category, first_reported_at,
			   status, created_at
		FROM complaint_clusters
		WHERE status = ?
		ORDER BY created_at DESC, rowid ASC
	`

	rows, err := r.db.QueryContext(ctx, query, models.ClusterStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list clusters: %w", err)
	}
	defer rows.Close()

	clusters := []models.ComplaintCluster{}
	for rows.Next() {
		var c models.ComplaintCluster
		var ids string
		var firstReported, created int64

		err := rows.Scan(
			&c.ID,
			&c.GenerationID,
			&c.ClusterName,
			&c.CenterLat,
			&c.CenterLng,
			&c.RadiusMeters,
			&ids,
			&c.PatternType,
			&c.DominantCategory,
			&firstReported,
			&c.Status,
			&created,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cluster: %w", err)
		}

		if err := json.Unmarshal([]byte(ids), &c.ComplaintIDs); err != nil {
			return nil, fmt.Errorf("failed to decode complaint ids for cluster %s: %w", c.ID, err)
		}
		c.FirstReportedAt = time.UnixMilli(firstReported).UTC()
		c.CreatedAt = time.UnixMilli(created).UTC()
		clusters = append(clusters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clusters: %w", err)
	}

	return clusters, nil
}

// MostRecentActiveCreatedAt returns the creation time of the newest active
// cluster, or nil when there is none
func (r *ClusterRepository) MostRecentActiveCreatedAt(ctx context.Context) (*time.Time, error) {
	var latest sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"SELECT MAX(created_at) FROM complaint_clusters WHERE status = ?",
		models.ClusterStatusActive,
	).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest cluster time: %w", err)
	}

	if !latest.Valid {
		return nil, nil
	}
	t := time.UnixMilli(latest.Int64).UTC()
	return &t, nil
}
