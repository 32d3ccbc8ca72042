package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/smarttransit/bus-tracking-backend/internal/models"
)

// execer is satisfied by both the pool and an open transaction
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// ActivityEntry is a log line to be written
type ActivityEntry struct {
	UserID      *int64
	ActionType  string
	EntityType  string
	EntityID    *int64
	Description string
}

// ActivityLogRepository handles activity_logs database operations
type ActivityLogRepository struct {
	db DB
}

// NewActivityLogRepository creates a new ActivityLogRepository
func NewActivityLogRepository(db DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

const insertActivityQuery = `
	INSERT INTO activity_logs (user_id, action_type, entity_type, entity_id, description)
	VALUES ($1, $2, $3, $4, $5)
`

func insertActivity(ctx context.Context, ex execer, entry ActivityEntry) error {
	_, err := ex.ExecContext(ctx, insertActivityQuery,
		entry.UserID, entry.ActionType, entry.EntityType, entry.EntityID, entry.Description)
	if err != nil {
		return fmt.Errorf("failed to log activity %s: %w", entry.ActionType, err)
	}
	return nil
}

// Log appends an activity entry
func (r *ActivityLogRepository) Log(ctx context.Context, entry ActivityEntry) error {
	return insertActivity(ctx, r.db, entry)
}

const activitySelect = `
	SELECT al.log_id, al.user_id, u.full_name AS user_name, al.action_type,
	       al.entity_type, al.entity_id, al.description, al.created_at
	FROM activity_logs al
	LEFT JOIN users u ON u.user_id = al.user_id
`

// Recent returns the newest entries across all users
func (r *ActivityLogRepository) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	logs := []models.ActivityLog{}
	query := activitySelect + `
		ORDER BY al.created_at DESC, al.log_id DESC
		LIMIT $1
	`
	if err := r.db.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent activity: %w", err)
	}
	return logs, nil
}

// ByUser returns the newest entries recorded for one user
func (r *ActivityLogRepository) ByUser(ctx context.Context, userID int64, limit int) ([]models.ActivityLog, error) {
	logs := []models.ActivityLog{}
	query := activitySelect + `
		WHERE al.user_id = $1
		ORDER BY al.created_at DESC, al.log_id DESC
		LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &logs, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get activity for user %d: %w", userID, err)
	}
	return logs, nil
}

// ByEntity returns the newest entries touching one entity
func (r *ActivityLogRepository) ByEntity(ctx context.Context, entityType string, entityID int64, limit int) ([]models.ActivityLog, error) {
	logs := []models.ActivityLog{}
	query := activitySelect + `
		WHERE al.entity_type = $1 AND al.entity_id = $2
		ORDER BY al.created_at DESC, al.log_id DESC
		LIMIT $3
	`
	if err := r.db.SelectContext(ctx, &logs, query, entityType, entityID, limit); err != nil {
		return nil, fmt.Errorf("failed to get activity for %s %d: %w", entityType, entityID, err)
	}
	return logs, nil
}

// DeleteOlderThan prunes entries created before cutoff
func (r *ActivityLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM activity_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune activity logs: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}
