package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-tracking-backend/internal/database"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
	"github.com/smarttransit/bus-tracking-backend/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// ClientInfo identifies the device a request came from
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// AuthService handles registration, login and token lifecycle
type AuthService struct {
	users         *database.UserRepository
	refreshTokens *database.RefreshTokenRepository
	userService   *UserService
	activity      *ActivityService
	jwtService    *jwt.Service
}

// NewAuthService creates a new auth service
func NewAuthService(
	users *database.UserRepository,
	refreshTokens *database.RefreshTokenRepository,
	userService *UserService,
	activity *ActivityService,
	jwtService *jwt.Service,
) *AuthService {
	return &AuthService{
		users:         users,
		refreshTokens: refreshTokens,
		userService:   userService,
		activity:      activity,
		jwtService:    jwtService,
	}
}

// Register creates a non-admin account and signs it in
func (s *AuthService) Register(ctx context.Context, req *models.CreateUserRequest, client ClientInfo) (*models.AuthResult, error) {
	user, err := s.userService.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	s.activity.LogRegistration(ctx, user, client.IPAddress, client.UserAgent)

	return s.issueTokens(ctx, user, client)
}

// Login verifies credentials and issues an access/refresh token pair.
// The account state is only disclosed once the password matched.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest, client ClientInfo) (*models.AuthResult, error) {
	userType, err := parseTypeFilter(strings.TrimSpace(req.UserType))
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)), userType)
	if err != nil {
		return nil, Internal("Login failed", err)
	}
	if user == nil {
		return nil, NewError(KindInvalidCredentials, "Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewError(KindInvalidCredentials, "Invalid email or password")
	}

	if !user.IsActive {
		return nil, NewError(KindInactiveAccount, "Account is inactive")
	}

	s.activity.LogLogin(ctx, user, client.IPAddress, client.UserAgent)

	return s.issueTokens(ctx, user, client)
}

// Refresh exchanges a stored refresh token for a new access token.
// The refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, NewError(KindUnauthorized, "Invalid or expired refresh token")
	}

	stored, err := s.refreshTokens.Get(ctx, refreshToken)
	if err != nil {
		return nil, Internal("Failed to refresh token", err)
	}
	if stored == nil || stored.UserID != claims.UserID || !stored.IsUsable(time.Now()) {
		return nil, NewError(KindUnauthorized, "Invalid or expired refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, Internal("Failed to refresh token", err)
	}
	if user == nil || !user.IsActive {
		if err := s.refreshTokens.RevokeAllForUser(ctx, claims.UserID); err != nil {
			logrus.WithError(err).WithField("user_id", claims.UserID).Warn("Failed to revoke tokens of disabled account")
		}
		return nil, NewError(KindUnauthorized, "Account is no longer active")
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.UserType))
	if err != nil {
		return nil, Internal("Failed to refresh token", err)
	}

	return &models.AuthResult{
		UserID:    user.ID,
		UserType:  user.UserType,
		FullName:  user.FullName,
		Token:     accessToken,
		ExpiresIn: int64(s.jwtService.AccessTokenExpiry().Seconds()),
	}, nil
}

// Logout revokes a refresh token. Revoking an already revoked token succeeds.
func (s *AuthService) Logout(ctx context.Context, refreshToken string, client ClientInfo) error {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return NewError(KindUnauthorized, "Invalid or expired refresh token")
	}

	revoked, err := s.refreshTokens.Revoke(ctx, refreshToken)
	if err != nil {
		return Internal("Logout failed", err)
	}
	if revoked {
		s.activity.LogLogout(ctx, claims.UserID, client.IPAddress)
	}
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User, client ClientInfo) (*models.AuthResult, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.UserType))
	if err != nil {
		return nil, Internal("Failed to issue tokens", err)
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, Internal("Failed to issue tokens", err)
	}

	expiresAt := time.Now().Add(s.jwtService.RefreshTokenExpiry())
	if err := s.refreshTokens.Store(ctx, user.ID, refreshToken, client.IPAddress, client.UserAgent, expiresAt); err != nil {
		return nil, Internal("Failed to issue tokens", fmt.Errorf("user %d: %w", user.ID, err))
	}

	return &models.AuthResult{
		UserID:       user.ID,
		UserType:     user.UserType,
		FullName:     user.FullName,
		Token:        accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtService.AccessTokenExpiry().Seconds()),
	}, nil
}
