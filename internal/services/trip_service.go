package services

import (
	"context"
	"errors"

	"github.com/smarttransit/bus-tracking-backend/internal/database"
	"github.com/smarttransit/bus-tracking-backend/internal/metrics"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
)

// TripService drives the bus trip lifecycle
type TripService struct {
	buses   *database.BusRepository
	metrics *metrics.Collector
}

// NewTripService creates a new trip service
func NewTripService(buses *database.BusRepository, m *metrics.Collector) *TripService {
	return &TripService{buses: buses, metrics: m}
}

// Transition applies action to the bus in req. The activity entry is
// attributed to the reporting driver, falling back to the caller.
func (s *TripService) Transition(ctx context.Context, action models.TripAction, req *models.TripRequest, callerID *int64) (*models.TripTransition, error) {
	if action == models.TripActionStart && req.DriverID == nil {
		return nil, Validation("bus_id and driver_id are required")
	}

	actorID := callerID
	if req.DriverID != nil {
		actorID = req.DriverID
	}

	transition, err := s.buses.TransitionTrip(ctx, req.BusID, action, actorID)
	switch {
	case err == nil:
		s.metrics.TripTransition(string(action), "ok")
		return transition, nil
	case errors.Is(err, database.ErrNotFound):
		s.metrics.TripTransition(string(action), "rejected")
		return nil, NotFound("Bus not found")
	case errors.Is(err, models.ErrInvalidTransition):
		s.metrics.TripTransition(string(action), "rejected")
		return nil, &Error{Kind: KindInvalidTransition, Message: err.Error(), Err: err}
	default:
		s.metrics.TripTransition(string(action), "error")
		return nil, Internal("Failed to "+string(action)+" trip", err)
	}
}
