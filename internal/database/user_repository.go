package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/smarttransit/bus-tracking-backend/internal/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	u.user_id, u.user_type, u.email, u.phone, u.password_hash, u.full_name,
	u.license_number, u.is_active, u.created_at
`

// List returns users, optionally filtered by type, with the driver's bus
func (r *UserRepository) List(ctx context.Context, userType *models.UserType) ([]models.User, error) {
	users := []models.User{}
	query := `
		SELECT ` + userColumns + `, b.bus_id, b.bus_number
		FROM users u
		LEFT JOIN LATERAL (
			SELECT bus_id, bus_number FROM buses WHERE driver_id = u.user_id ORDER BY bus_id LIMIT 1
		) b ON TRUE
		WHERE ($1::text IS NULL OR u.user_type = $1)
		ORDER BY u.created_at DESC, u.user_id DESC
	`

	var filter interface{}
	if userType != nil {
		filter = string(*userType)
	}

	if err := r.db.SelectContext(ctx, &users, query, filter); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetByID retrieves a user by ID, returning nil when not found
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	query := `
		SELECT ` + userColumns + `, b.bus_id, b.bus_number
		FROM users u
		LEFT JOIN LATERAL (
			SELECT bus_id, bus_number FROM buses WHERE driver_id = u.user_id ORDER BY bus_id LIMIT 1
		) b ON TRUE
		WHERE u.user_id = $1
	`

	err := r.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email, optionally restricted to a user type
func (r *UserRepository) GetByEmail(ctx context.Context, email string, userType *models.UserType) (*models.User, error) {
	var user models.User
	query := `
		SELECT ` + userColumns + `
		FROM users u
		WHERE LOWER(u.email) = LOWER($1) AND ($2::text IS NULL OR u.user_type = $2)
	`

	var filter interface{}
	if userType != nil {
		filter = string(*userType)
	}

	err := r.db.GetContext(ctx, &user, query, email, filter)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// EmailExists reports whether an account already uses email
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email)
}

// PhoneExists reports whether an account already uses phone
func (r *UserRepository) PhoneExists(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE phone = $1)`, phone)
}

// LicenseExists reports whether a driver already holds licenseNumber
func (r *UserRepository) LicenseExists(ctx context.Context, licenseNumber string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE license_number = $1)`, licenseNumber)
}

func (r *UserRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var exists bool
	if err := r.db.QueryRowxContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user uniqueness: %w", err)
	}
	return exists, nil
}

// Create inserts an active user and fills in its ID and creation time
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO users (user_type, email, phone, password_hash, full_name, license_number, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING user_id, created_at
	`, user.UserType, user.Email, user.Phone, user.PasswordHash, user.FullName, user.LicenseNumber,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.IsActive = true
	return nil
}

// Delete hard-deletes a user
func (r *UserRepository) Delete(ctx context.Context, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete user %d: %w", userID, err)
	}
	return affectedOne(result)
}

// Counts returns total, active and inactive users, optionally of one type
func (r *UserRepository) Counts(ctx context.Context, userType *models.UserType) (*models.EntityCounts, error) {
	var filter interface{}
	if userType != nil {
		filter = string(*userType)
	}

	var counts models.EntityCounts
	err := r.db.GetContext(ctx, &counts, `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE is_active) AS active,
		       COUNT(*) FILTER (WHERE NOT is_active) AS inactive
		FROM users
		WHERE ($1::text IS NULL OR user_type = $1)
	`, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	return &counts, nil
}
