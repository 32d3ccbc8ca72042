package services

import (
	"context"

	"github.com/smarttransit/bus-tracking-backend/internal/database"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
)

// DailyStatsDays is the number of most recent days reported by daily_stats
const DailyStatsDays = 30

// AnalyticsService serves dashboard aggregates
type AnalyticsService struct {
	analytics *database.AnalyticsRepository
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(analytics *database.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{analytics: analytics}
}

// Overview returns fleet size, buses reporting today and distance covered
func (s *AnalyticsService) Overview(ctx context.Context) (*models.FleetOverview, error) {
	overview, err := s.analytics.Overview(ctx)
	if err != nil {
		return nil, Internal("Failed to load fleet overview", err)
	}
	return overview, nil
}

// DailyStats returns active buses, drivers and average speed per day over the last DailyStatsDays days
func (s *AnalyticsService) DailyStats(ctx context.Context) ([]models.DailyStat, error) {
	stats, err := s.analytics.DailyStats(ctx, DailyStatsDays)
	if err != nil {
		return nil, Internal("Failed to load daily statistics", err)
	}
	return stats, nil
}

// RoutePerformance returns buses, GPS points and average speed per route
func (s *AnalyticsService) RoutePerformance(ctx context.Context) ([]models.RoutePerformance, error) {
	perf, err := s.analytics.RoutePerformance(ctx)
	if err != nil {
		return nil, Internal("Failed to load route performance", err)
	}
	return perf, nil
}
