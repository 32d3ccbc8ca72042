package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
)

// RouteRepository handles routes and their stops
type RouteRepository struct {
	db DB
}

// NewRouteRepository creates a new RouteRepository
func NewRouteRepository(db DB) *RouteRepository {
	return &RouteRepository{db: db}
}

const routeSelect = `
	SELECT r.route_id, r.route_number, r.route_name, r.start_location, r.end_location,
	       r.distance_km, r.estimated_time_minutes, r.is_active, r.created_at,
	       (SELECT COUNT(*) FROM stops s WHERE s.route_id = r.route_id) AS stop_count
	FROM routes r
`

// ListActive returns active routes ordered by route number
func (r *RouteRepository) ListActive(ctx context.Context) ([]models.Route, error) {
	routes := []models.Route{}
	query := routeSelect + `
		WHERE r.is_active = TRUE
		ORDER BY r.route_number, r.route_id
	`
	if err := r.db.SelectContext(ctx, &routes, query); err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	return routes, nil
}

// GetByID retrieves a route by ID, returning nil when it does not exist
func (r *RouteRepository) GetByID(ctx context.Context, routeID int64) (*models.Route, error) {
	var route models.Route
	err := r.db.GetContext(ctx, &route, routeSelect+` WHERE r.route_id = $1`, routeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get route %d: %w", routeID, err)
	}
	return &route, nil
}

// Create inserts an active route and returns its ID
func (r *RouteRepository) Create(ctx context.Context, req *models.CreateRouteRequest, actorID *int64) (int64, error) {
	var routeID int64
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO routes (route_number, route_name, start_location, end_location,
			                    distance_km, estimated_time_minutes, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE)
			RETURNING route_id
		`, req.RouteNumber, req.RouteName, req.StartLocation, req.EndLocation,
			req.DistanceKm, req.EstimatedTimeMinutes,
		).Scan(&routeID)
		if err != nil {
			return fmt.Errorf("failed to create route: %w", err)
		}

		return insertActivity(ctx, tx, ActivityEntry{
			UserID:      actorID,
			ActionType:  "route_created",
			EntityType:  models.EntityRoute,
			EntityID:    &routeID,
			Description: fmt.Sprintf("Route %s - %s created", req.RouteNumber, req.RouteName),
		})
	})
	if err != nil {
		return 0, err
	}
	return routeID, nil
}

// Counts returns total, active and inactive route counts
func (r *RouteRepository) Counts(ctx context.Context) (*models.EntityCounts, error) {
	var counts models.EntityCounts
	err := r.db.GetContext(ctx, &counts, `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE is_active) AS active,
		       COUNT(*) FILTER (WHERE NOT is_active) AS inactive
		FROM routes
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count routes: %w", err)
	}
	return &counts, nil
}

// ListStops returns the stops of a route in travel order
func (r *RouteRepository) ListStops(ctx context.Context, routeID int64) ([]models.Stop, error) {
	stops := []models.Stop{}
	err := r.db.SelectContext(ctx, &stops, `
		SELECT stop_id, route_id, stop_number, stop_name, latitude, longitude
		FROM stops
		WHERE route_id = $1
		ORDER BY stop_number, stop_id
	`, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stops for route %d: %w", routeID, err)
	}
	return stops, nil
}

// AddStop appends a stop to a route
func (r *RouteRepository) AddStop(ctx context.Context, req *models.AddStopRequest) (int64, error) {
	var stopID int64
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO stops (route_id, stop_number, stop_name, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING stop_id
	`, req.RouteID, req.StopNumber, req.StopName, req.Latitude, req.Longitude).Scan(&stopID)
	if err != nil {
		return 0, fmt.Errorf("failed to add stop to route %d: %w", req.RouteID, err)
	}
	return stopID, nil
}

// Delete removes only the route row. Stops are never deleted with it: the
// stops foreign key has no cascade, so a route that still has stops fails
// with a foreign key violation.
func (r *RouteRepository) Delete(ctx context.Context, routeID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM routes WHERE route_id = $1`, routeID)
	if err != nil {
		return false, fmt.Errorf("failed to delete route %d: %w", routeID, err)
	}
	return affectedOne(result)
}
