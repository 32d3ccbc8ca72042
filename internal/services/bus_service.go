package services

import (
	"context"
	"strings"

	"github.com/smarttransit/bus-tracking-backend/internal/database"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
)

// BusService manages the fleet
type BusService struct {
	buses *database.BusRepository
}

// NewBusService creates a new bus service
func NewBusService(buses *database.BusRepository) *BusService {
	return &BusService{buses: buses}
}

// List returns every bus with its live status
func (s *BusService) List(ctx context.Context) ([]models.BusDetail, error) {
	buses, err := s.buses.List(ctx)
	if err != nil {
		return nil, Internal("Failed to load buses", err)
	}
	return buses, nil
}

// Get returns one bus
func (s *BusService) Get(ctx context.Context, busID int64) (*models.BusDetail, error) {
	bus, err := s.buses.GetByID(ctx, busID)
	if err != nil {
		return nil, Internal("Failed to load bus", err)
	}
	if bus == nil {
		return nil, NotFound("Bus not found")
	}
	return bus, nil
}

// Create registers a bus and its status row
func (s *BusService) Create(ctx context.Context, req *models.CreateBusRequest, actorID *int64) (int64, error) {
	req.BusNumber = strings.TrimSpace(req.BusNumber)
	req.RegistrationPlate = strings.ToUpper(strings.TrimSpace(req.RegistrationPlate))
	if req.BusNumber == "" || req.RegistrationPlate == "" {
		return 0, Validation("bus_number and registration_plate are required")
	}

	busID, err := s.buses.Create(ctx, req, actorID)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return 0, &Error{Kind: KindConflict, Message: "A bus with this registration plate already exists", Err: err}
		case database.IsForeignKeyViolation(err):
			return 0, Validation("Route %d does not exist", req.RouteID)
		}
		return 0, Internal("Failed to create bus", err)
	}
	return busID, nil
}

// UpdatePassengers sets the live passenger count
func (s *BusService) UpdatePassengers(ctx context.Context, req *models.UpdatePassengersRequest) error {
	if req.CurrentPassengers == nil || *req.CurrentPassengers < 0 {
		return Validation("current_passengers must be zero or more")
	}

	found, err := s.buses.UpdatePassengers(ctx, req.BusID, *req.CurrentPassengers)
	if err != nil {
		return Internal("Failed to update passengers", err)
	}
	if !found {
		return NotFound("Bus not found")
	}
	return nil
}

// Delete removes a bus and its status row. Location history is never
// removed here, so a bus that has reported positions cannot be deleted.
func (s *BusService) Delete(ctx context.Context, busID int64) error {
	found, err := s.buses.Delete(ctx, busID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return &Error{Kind: KindConflict, Message: "Bus has location history and cannot be deleted", Err: err}
		}
		return Internal("Failed to delete bus", err)
	}
	if !found {
		return NotFound("Bus not found")
	}
	return nil
}

// Stats returns fleet counts by status
func (s *BusService) Stats(ctx context.Context) (*models.EntityCounts, error) {
	counts, err := s.buses.Counts(ctx)
	if err != nil {
		return nil, Internal("Failed to load bus statistics", err)
	}
	return counts, nil
}
