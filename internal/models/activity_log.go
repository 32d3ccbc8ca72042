package models

import "time"

// ActivityLog is an append-only record of a user or system action
type ActivityLog struct {
	ID          int64     `json:"log_id" db:"log_id"`
	UserID      *int64    `json:"user_id" db:"user_id"`
	UserName    *string   `json:"user_name,omitempty" db:"user_name"`
	ActionType  string    `json:"action_type" db:"action_type"`
	EntityType  string    `json:"entity_type" db:"entity_type"`
	EntityID    *int64    `json:"entity_id" db:"entity_id"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Entity types referenced by activity logs
const (
	EntityBus   = "bus"
	EntityRoute = "route"
	EntityUser  = "user"
)
