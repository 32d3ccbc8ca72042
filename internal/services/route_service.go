package services

import (
	"context"
	"strings"

	"github.com/smarttransit/bus-tracking-backend/internal/database"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
)

// RouteService manages routes and their stops
type RouteService struct {
	routes *database.RouteRepository
}

// NewRouteService creates a new route service
func NewRouteService(routes *database.RouteRepository) *RouteService {
	return &RouteService{routes: routes}
}

// List returns the active routes
func (s *RouteService) List(ctx context.Context) ([]models.Route, error) {
	routes, err := s.routes.ListActive(ctx)
	if err != nil {
		return nil, Internal("Failed to load routes", err)
	}
	return routes, nil
}

// Get returns one route
func (s *RouteService) Get(ctx context.Context, routeID int64) (*models.Route, error) {
	route, err := s.routes.GetByID(ctx, routeID)
	if err != nil {
		return nil, Internal("Failed to load route", err)
	}
	if route == nil {
		return nil, NotFound("Route not found")
	}
	return route, nil
}

// Create adds an active route
func (s *RouteService) Create(ctx context.Context, req *models.CreateRouteRequest, actorID *int64) (int64, error) {
	req.RouteNumber = strings.TrimSpace(req.RouteNumber)
	req.RouteName = strings.TrimSpace(req.RouteName)
	if req.RouteNumber == "" || req.RouteName == "" {
		return 0, Validation("route_number and route_name are required")
	}

	routeID, err := s.routes.Create(ctx, req, actorID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return 0, &Error{Kind: KindConflict, Message: "A route with this number already exists", Err: err}
		}
		return 0, Internal("Failed to create route", err)
	}
	return routeID, nil
}

// Stops lists a route's stops in travel order
func (s *RouteService) Stops(ctx context.Context, routeID int64) ([]models.Stop, error) {
	stops, err := s.routes.ListStops(ctx, routeID)
	if err != nil {
		return nil, Internal("Failed to load stops", err)
	}
	return stops, nil
}

// AddStop appends a stop to an existing route
func (s *RouteService) AddStop(ctx context.Context, req *models.AddStopRequest) (int64, error) {
	req.StopName = strings.TrimSpace(req.StopName)
	if req.StopName == "" {
		return 0, Validation("stop_name is required")
	}

	stopID, err := s.routes.AddStop(ctx, req)
	if err != nil {
		switch {
		case database.IsForeignKeyViolation(err):
			return 0, Validation("Route %d does not exist", req.RouteID)
		case database.IsUniqueViolation(err):
			return 0, &Error{Kind: KindConflict, Message: "This route already has a stop with that number", Err: err}
		}
		return 0, Internal("Failed to add stop", err)
	}
	return stopID, nil
}

// Delete removes a route. Routes that still have stops are refused.
func (s *RouteService) Delete(ctx context.Context, routeID int64) error {
	found, err := s.routes.Delete(ctx, routeID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return &Error{Kind: KindConflict, Message: "Route still has stops; remove them first", Err: err}
		}
		return Internal("Failed to delete route", err)
	}
	if !found {
		return NotFound("Route not found")
	}
	return nil
}

// Stats returns route counts
func (s *RouteService) Stats(ctx context.Context) (*models.EntityCounts, error) {
	counts, err := s.routes.Counts(ctx)
	if err != nil {
		return nil, Internal("Failed to load route statistics", err)
	}
	return counts, nil
}
