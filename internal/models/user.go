package models

import (
	"fmt"
	"time"
)

// UserType is the closed set of account roles
type UserType string

const (
	UserTypeAdmin     UserType = "admin"
	UserTypeDriver    UserType = "driver"
	UserTypePassenger UserType = "passenger"
)

// ParseUserType validates a client-supplied role
func ParseUserType(s string) (UserType, error) {
	switch UserType(s) {
	case UserTypeAdmin, UserTypeDriver, UserTypePassenger:
		return UserType(s), nil
	default:
		return "", fmt.Errorf("invalid user type: %q (must be admin, driver or passenger)", s)
	}
}

// User represents an account in the system
type User struct {
	ID            int64     `json:"user_id" db:"user_id"`
	UserType      UserType  `json:"user_type" db:"user_type"`
	Email         string    `json:"email" db:"email"`
	Phone         *string   `json:"phone" db:"phone"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	FullName      string    `json:"full_name" db:"full_name"`
	LicenseNumber *string   `json:"license_number,omitempty" db:"license_number"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	// Populated by listing queries that join the driver's assigned bus
	BusID     *int64  `json:"bus_id,omitempty" db:"bus_id"`
	BusNumber *string `json:"bus_number,omitempty" db:"bus_number"`
}

// IsDriver reports whether the user can be assigned to a bus
func (u *User) IsDriver() bool {
	return u.UserType == UserTypeDriver
}

// CreateUserRequest is used by admins and by self-registration
type CreateUserRequest struct {
	UserType      string `json:"user_type"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=6"`
	FullName      string `json:"full_name" binding:"required"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	UserType string `json:"user_type"`
}

// RefreshTokenRequest carries a refresh token for refresh and logout
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthResult is returned by login, registration and refresh
type AuthResult struct {
	UserID       int64    `json:"user_id"`
	UserType     UserType `json:"user_type"`
	FullName     string   `json:"full_name"`
	Token        string   `json:"token"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	ExpiresIn    int64    `json:"expires_in"`
}
