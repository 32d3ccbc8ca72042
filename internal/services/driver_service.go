package services

import (
	"context"

	"github.com/smarttransit/bus-tracking-backend/internal/database"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
)

// DriverService serves the driver app's views and bus assignment
type DriverService struct {
	buses  *database.BusRepository
	routes *database.RouteRepository
	users  *database.UserRepository
}

// NewDriverService creates a new driver service
func NewDriverService(buses *database.BusRepository, routes *database.RouteRepository, users *database.UserRepository) *DriverService {
	return &DriverService{buses: buses, routes: routes, users: users}
}

// AssignedBus returns the bus, route and live status for a driver
func (s *DriverService) AssignedBus(ctx context.Context, driverID int64) (*models.DriverAssignment, error) {
	assignment, err := s.buses.GetAssignmentForDriver(ctx, driverID)
	if err != nil {
		return nil, Internal("Failed to load assigned bus", err)
	}
	if assignment == nil {
		return nil, NotFound("No bus assigned to this driver")
	}
	return assignment, nil
}

// RouteStops returns the ordered stops of the route a bus serves.
// A bus without a route has no stops.
func (s *DriverService) RouteStops(ctx context.Context, busID int64) ([]models.Stop, error) {
	routeID, found, err := s.buses.GetRouteID(ctx, busID)
	if err != nil {
		return nil, Internal("Failed to load route stops", err)
	}
	if !found {
		return nil, NotFound("Bus not found")
	}
	if routeID == nil {
		return []models.Stop{}, nil
	}

	stops, err := s.routes.ListStops(ctx, *routeID)
	if err != nil {
		return nil, Internal("Failed to load route stops", err)
	}
	return stops, nil
}

// CurrentStatus returns the live position and occupancy of a bus
func (s *DriverService) CurrentStatus(ctx context.Context, busID int64) (*models.BusStatus, error) {
	status, err := s.buses.GetStatus(ctx, busID)
	if err != nil {
		return nil, Internal("Failed to load bus status", err)
	}
	if status == nil {
		return nil, NotFound("Bus status not found")
	}
	return status, nil
}

// AssignBus makes driverID the driver of busID, replacing any previous driver
func (s *DriverService) AssignBus(ctx context.Context, req *models.AssignBusRequest, actorID *int64) error {
	driver, err := s.users.GetByID(ctx, req.DriverID)
	if err != nil {
		return Internal("Failed to assign bus", err)
	}
	if driver == nil {
		return NotFound("Driver not found")
	}
	if !driver.IsDriver() {
		return Validation("User %d is not a driver", driver.ID)
	}
	if !driver.IsActive {
		return Validation("Driver account is inactive")
	}

	found, err := s.buses.AssignDriver(ctx, req.BusID, req.DriverID, actorID)
	if err != nil {
		return Internal("Failed to assign bus", err)
	}
	if !found {
		return NotFound("Bus not found")
	}
	return nil
}
