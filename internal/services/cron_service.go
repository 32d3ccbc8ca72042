package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-tracking-backend/internal/config"
	"github.com/smarttransit/bus-tracking-backend/internal/database"
	"github.com/smarttransit/bus-tracking-backend/internal/metrics"
)

const retentionJobTimeout = 10 * time.Minute

// RetentionResult counts the rows removed by one retention run
type RetentionResult struct {
	Locations     int64 `json:"locations"`
	ActivityLogs  int64 `json:"activity_logs"`
	RefreshTokens int64 `json:"refresh_tokens"`
}

// CronService manages scheduled background jobs
type CronService struct {
	cron      *cron.Cron
	schedule  string
	locations *database.LocationRepository
	logs      *database.ActivityLogRepository
	tokens    *database.RefreshTokenRepository
	metrics   *metrics.Collector

	locationDays int
	activityDays int
	now          func() time.Time
}

// NewCronService creates a new CronService. Schedules use seconds precision.
func NewCronService(
	cfg config.TrackingConfig,
	locations *database.LocationRepository,
	logs *database.ActivityLogRepository,
	tokens *database.RefreshTokenRepository,
	m *metrics.Collector,
) *CronService {
	return &CronService{
		cron:         cron.New(cron.WithSeconds()),
		schedule:     cfg.RetentionSchedule,
		locations:    locations,
		logs:         logs,
		tokens:       tokens,
		metrics:      m,
		locationDays: cfg.LocationRetentionDays,
		activityDays: cfg.ActivityRetentionDays,
		now:          time.Now,
	}
}

// Start schedules the retention job and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.retentionJob); err != nil {
		return fmt.Errorf("failed to schedule retention job %q: %w", s.schedule, err)
	}

	s.cron.Start()
	logrus.WithFields(logrus.Fields{
		"schedule":      s.schedule,
		"location_days": s.locationDays,
		"activity_days": s.activityDays,
	}).Info("Cron service started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logrus.Info("Cron service stopped")
}

func (s *CronService) retentionJob() {
	ctx, cancel := context.WithTimeout(context.Background(), retentionJobTimeout)
	defer cancel()

	if _, err := s.RunRetentionNow(ctx); err != nil {
		logrus.WithError(err).Error("Retention job failed")
	}
}

// RunRetentionNow prunes location samples and activity logs older than the
// configured windows, and removes expired refresh tokens. A window of 0 days
// leaves that table untouched.
func (s *CronService) RunRetentionNow(ctx context.Context) (*RetentionResult, error) {
	started := s.now()
	result := &RetentionResult{}

	if s.locationDays > 0 {
		deleted, err := s.locations.DeleteOlderThan(ctx, started.AddDate(0, 0, -s.locationDays))
		if err != nil {
			return result, err
		}
		result.Locations = deleted
		s.metrics.RetentionPruned("driver_locations", deleted)
	}

	if s.activityDays > 0 {
		deleted, err := s.logs.DeleteOlderThan(ctx, started.AddDate(0, 0, -s.activityDays))
		if err != nil {
			return result, err
		}
		result.ActivityLogs = deleted
		s.metrics.RetentionPruned("activity_logs", deleted)
	}

	deleted, err := s.tokens.CleanupExpired(ctx, started)
	if err != nil {
		return result, err
	}
	result.RefreshTokens = deleted
	s.metrics.RetentionPruned("refresh_tokens", deleted)

	logrus.WithFields(logrus.Fields{
		"locations":      result.Locations,
		"activity_logs":  result.ActivityLogs,
		"refresh_tokens": result.RefreshTokens,
		"duration":       time.Since(started).String(),
	}).Info("Retention run finished")

	return result, nil
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}
