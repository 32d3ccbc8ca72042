package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-tracking-backend/internal/database"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
	"github.com/smarttransit/bus-tracking-backend/internal/utils"
)

// Default page sizes for the activity log views
const (
	DefaultRecentLogLimit = 20
	DefaultEntityLogLimit = 50
)

// ActivityService records and reads the activity log
type ActivityService struct {
	logs     *database.ActivityLogRepository
	enabled  bool
	maxLimit int
}

// NewActivityService creates a new activity service. When enabled is false,
// identity events are not recorded; entries written inside domain
// transactions are unaffected.
func NewActivityService(logs *database.ActivityLogRepository, enabled bool, maxLimit int) *ActivityService {
	return &ActivityService{logs: logs, enabled: enabled, maxLimit: maxLimit}
}

// LogRegistration records a self-registration
func (s *ActivityService) LogRegistration(ctx context.Context, user *models.User, ipAddress, userAgent string) {
	device := utils.ParseUserAgent(userAgent)
	s.record(ctx, database.ActivityEntry{
		UserID:      &user.ID,
		ActionType:  "registration",
		EntityType:  models.EntityUser,
		EntityID:    &user.ID,
		Description: fmt.Sprintf("New %s registered: %s from %s, IP %s", user.UserType, user.FullName, device.Summary(), ipAddress),
	})
}

// LogUserCreated records an account created by an administrator
func (s *ActivityService) LogUserCreated(ctx context.Context, actorID *int64, user *models.User) {
	s.record(ctx, database.ActivityEntry{
		UserID:      actorID,
		ActionType:  "user_created",
		EntityType:  models.EntityUser,
		EntityID:    &user.ID,
		Description: fmt.Sprintf("%s account created for %s", titleCase(string(user.UserType)), user.FullName),
	})
}

// LogLogin records a successful login with the client's device
func (s *ActivityService) LogLogin(ctx context.Context, user *models.User, ipAddress, userAgent string) {
	device := utils.ParseUserAgent(userAgent)
	s.record(ctx, database.ActivityEntry{
		UserID:      &user.ID,
		ActionType:  "login",
		EntityType:  models.EntityUser,
		EntityID:    &user.ID,
		Description: fmt.Sprintf("%s %s logged in from %s, IP %s", titleCase(string(user.UserType)), user.FullName, device.Summary(), ipAddress),
	})
}

// LogLogout records a refresh token revocation
func (s *ActivityService) LogLogout(ctx context.Context, userID int64, ipAddress string) {
	s.record(ctx, database.ActivityEntry{
		UserID:      &userID,
		ActionType:  "logout",
		EntityType:  models.EntityUser,
		EntityID:    &userID,
		Description: fmt.Sprintf("User logged out, IP %s", ipAddress),
	})
}

// record writes an entry on a best-effort basis; failures are only logged
func (s *ActivityService) record(ctx context.Context, entry database.ActivityEntry) {
	if !s.enabled {
		return
	}
	if err := s.logs.Log(ctx, entry); err != nil {
		logrus.WithError(err).WithField("action_type", entry.ActionType).Warn("Failed to record activity")
	}
}

// Recent returns the newest entries across the system
func (s *ActivityService) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	logs, err := s.logs.Recent(ctx, ClampLimit(limit, DefaultRecentLogLimit, s.maxLimit))
	if err != nil {
		return nil, Internal("Failed to load activity logs", err)
	}
	return logs, nil
}

// ByUser returns the newest entries recorded for a user
func (s *ActivityService) ByUser(ctx context.Context, userID int64, limit int) ([]models.ActivityLog, error) {
	logs, err := s.logs.ByUser(ctx, userID, ClampLimit(limit, DefaultEntityLogLimit, s.maxLimit))
	if err != nil {
		return nil, Internal("Failed to load activity logs", err)
	}
	return logs, nil
}

// ByEntity returns the newest entries about one entity
func (s *ActivityService) ByEntity(ctx context.Context, entityType string, entityID int64, limit int) ([]models.ActivityLog, error) {
	entityType = strings.ToLower(strings.TrimSpace(entityType))
	if entityType == "" {
		return nil, Validation("entity_type and entity_id are required")
	}

	logs, err := s.logs.ByEntity(ctx, entityType, entityID, ClampLimit(limit, DefaultEntityLogLimit, s.maxLimit))
	if err != nil {
		return nil, Internal("Failed to load activity logs", err)
	}
	return logs, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
