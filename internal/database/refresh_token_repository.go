package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/smarttransit/bus-tracking-backend/internal/models"
)

// RefreshTokenRepository handles refresh token database operations
type RefreshTokenRepository struct {
	db DB
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// HashToken creates a SHA-256 hash of the token for storage
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// Store saves the hash of a newly issued refresh token
func (r *RefreshTokenRepository) Store(ctx context.Context, userID int64, token, ipAddress, userAgent string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, ip_address, user_agent, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, HashToken(token), nullableString(ipAddress), nullableString(userAgent), expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// Get retrieves a refresh token by its hash, returning nil when unknown
func (r *RefreshTokenRepository) Get(ctx context.Context, token string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	err := r.db.GetContext(ctx, &refreshToken, `
		SELECT id, user_id, token_hash, ip_address, user_agent,
		       created_at, expires_at, revoked, revoked_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`, HashToken(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return &refreshToken, nil
}

// Revoke revokes one token. It reports false when the token was unknown or already revoked.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, token string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET revoked = TRUE, revoked_at = NOW()
		WHERE token_hash = $1 AND revoked = FALSE
	`, HashToken(token))
	if err != nil {
		return false, fmt.Errorf("failed to revoke token: %w", err)
	}
	return affectedOne(result)
}

// RevokeAllForUser revokes every active token of a user
func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET revoked = TRUE, revoked_at = NOW()
		WHERE user_id = $1 AND revoked = FALSE
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke all user tokens: %w", err)
	}
	return nil
}

// CleanupExpired removes tokens that expired before now
func (r *RefreshTokenRepository) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}
