package database

import (
	"context"
	"fmt"

	"github.com/smarttransit/bus-tracking-backend/internal/models"
)

// AnalyticsRepository runs the read-only reporting aggregates
type AnalyticsRepository struct {
	db DB
}

// NewAnalyticsRepository creates a new AnalyticsRepository
func NewAnalyticsRepository(db DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// Overview computes the fleet snapshot. "Today" is the database server's
// CURRENT_DATE. Distance joins each bus's current route, so a bus that changed
// route during the day is counted against its latest route only.
func (r *AnalyticsRepository) Overview(ctx context.Context) (*models.FleetOverview, error) {
	var overview models.FleetOverview
	err := r.db.GetContext(ctx, &overview, `
		SELECT
			(SELECT COUNT(*) FROM buses) AS total_buses,
			(SELECT COUNT(*) FROM buses WHERE status = 'active') AS active_buses,
			(SELECT COUNT(DISTINCT bus_id)
			   FROM driver_locations
			  WHERE created_at >= CURRENT_DATE AND created_at < CURRENT_DATE + 1) AS trips_today,
			(SELECT COALESCE(ROUND(SUM(t.distance_km)::numeric, 2), 0)::float8
			   FROM (
				SELECT DISTINCT dl.bus_id, r.distance_km
				  FROM driver_locations dl
				  JOIN buses b ON b.bus_id = dl.bus_id
				  JOIN routes r ON r.route_id = b.route_id
				 WHERE dl.created_at >= CURRENT_DATE AND dl.created_at < CURRENT_DATE + 1
			   ) t) AS total_distance_km,
			(SELECT COALESCE(SUM(current_passengers), 0) FROM bus_status) AS total_passengers
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to compute fleet overview: %w", err)
	}

	overview.InactiveBuses = overview.TotalBuses - overview.ActiveBuses
	return &overview, nil
}

// DailyStats aggregates GPS samples per calendar day, newest day first
func (r *AnalyticsRepository) DailyStats(ctx context.Context, days int) ([]models.DailyStat, error) {
	stats := []models.DailyStat{}
	err := r.db.SelectContext(ctx, &stats, `
		SELECT TO_CHAR(DATE(created_at), 'YYYY-MM-DD') AS date,
		       COUNT(DISTINCT bus_id) AS buses_active,
		       COUNT(DISTINCT driver_id) AS drivers_active,
		       COALESCE(MAX(speed_kmh), 0) AS max_speed,
		       COALESCE(ROUND(AVG(speed_kmh)::numeric, 2), 0)::float8 AS avg_speed
		FROM driver_locations
		GROUP BY DATE(created_at)
		ORDER BY DATE(created_at) DESC
		LIMIT $1
	`, days)
	if err != nil {
		return nil, fmt.Errorf("failed to compute daily stats: %w", err)
	}
	return stats, nil
}

// RoutePerformance aggregates GPS samples per route, busiest first
func (r *AnalyticsRepository) RoutePerformance(ctx context.Context) ([]models.RoutePerformance, error) {
	perf := []models.RoutePerformance{}
	err := r.db.SelectContext(ctx, &perf, `
		SELECT r.route_id, r.route_number, r.route_name,
		       COUNT(DISTINCT b.bus_id) AS buses,
		       COUNT(dl.location_id) AS gps_points,
		       COALESCE(ROUND(AVG(dl.speed_kmh)::numeric, 2), 0)::float8 AS avg_speed,
		       COALESCE(MAX(dl.speed_kmh), 0) AS max_speed
		FROM routes r
		LEFT JOIN buses b ON b.route_id = r.route_id
		LEFT JOIN driver_locations dl ON dl.bus_id = b.bus_id
		GROUP BY r.route_id, r.route_number, r.route_name
		ORDER BY gps_points DESC, r.route_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to compute route performance: %w", err)
	}
	return perf, nil
}
