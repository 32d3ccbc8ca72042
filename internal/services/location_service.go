package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-tracking-backend/internal/config"
	"github.com/smarttransit/bus-tracking-backend/internal/database"
	"github.com/smarttransit/bus-tracking-backend/internal/metrics"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
)

// LocationPublisher fans out stored samples to live subscribers
type LocationPublisher interface {
	PublishLocation(loc *models.DriverLocation) error
}

// Caller is the authenticated user a request is made on behalf of
type Caller struct {
	UserID   int64
	UserType models.UserType
}

// LocationService ingests and serves GPS samples
type LocationService struct {
	locations    *database.LocationRepository
	publisher    LocationPublisher
	metrics      *metrics.Collector
	defaultLimit int
	maxLimit     int
}

// NewLocationService creates a new location service. publisher may be nil.
func NewLocationService(
	locations *database.LocationRepository,
	publisher LocationPublisher,
	m *metrics.Collector,
	cfg config.TrackingConfig,
) *LocationService {
	return &LocationService{
		locations:    locations,
		publisher:    publisher,
		metrics:      m,
		defaultLimit: cfg.HistoryDefaultLimit,
		maxLimit:     cfg.HistoryMaxLimit,
	}
}

// ClampLimit replaces a non-positive limit with def and caps it at maxLimit
func ClampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		limit = def
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

func (s *LocationService) reject(reason, format string, args ...interface{}) error {
	s.metrics.LocationRejected(reason)
	return Validation(format, args...)
}

// Update stores a GPS sample and refreshes the bus's cached position.
// Drivers report as themselves: driver_id defaults to the caller and may not
// name anyone else. Publishing happens after the commit and never fails the
// request.
func (s *LocationService) Update(ctx context.Context, req *models.LocationUpdateRequest, caller Caller) (*models.DriverLocation, error) {
	if caller.UserType == models.UserTypeDriver {
		if req.DriverID == nil {
			req.DriverID = &caller.UserID
		} else if *req.DriverID != caller.UserID {
			s.metrics.LocationRejected("driver_mismatch")
			return nil, NewError(KindForbidden, "Drivers can only report their own location")
		}
	}

	if req.BusID == nil || req.DriverID == nil || req.Latitude == nil || req.Longitude == nil {
		return nil, s.reject("missing_field", "bus_id, driver_id, latitude and longitude are required")
	}
	if *req.Latitude < -90 || *req.Latitude > 90 {
		return nil, s.reject("latitude_out_of_range", "latitude must be between -90 and 90")
	}
	if *req.Longitude < -180 || *req.Longitude > 180 {
		return nil, s.reject("longitude_out_of_range", "longitude must be between -180 and 180")
	}

	loc := &models.DriverLocation{
		BusID:     *req.BusID,
		DriverID:  *req.DriverID,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	}
	if req.SpeedKmh != nil {
		if *req.SpeedKmh < 0 {
			return nil, s.reject("negative_speed", "speed_kmh cannot be negative")
		}
		loc.SpeedKmh = *req.SpeedKmh
	}
	if req.AccuracyMeters != nil {
		if *req.AccuracyMeters < 0 {
			return nil, s.reject("negative_accuracy", "accuracy_meters cannot be negative")
		}
		loc.AccuracyMeters = *req.AccuracyMeters
	}

	if err := s.locations.Insert(ctx, loc); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, s.reject("unknown_reference", "bus %d or driver %d does not exist", loc.BusID, loc.DriverID)
		}
		return nil, Internal("Failed to update location", err)
	}
	s.metrics.LocationStored()

	if s.publisher != nil {
		if err := s.publisher.PublishLocation(loc); err != nil {
			logrus.WithError(err).WithField("bus_id", loc.BusID).Warn("Failed to publish location")
		}
	}

	return loc, nil
}

// Current returns the newest sample of a bus
func (s *LocationService) Current(ctx context.Context, busID int64) (*models.DriverLocation, error) {
	loc, err := s.locations.Current(ctx, busID)
	if err != nil {
		return nil, Internal("Failed to get current location", err)
	}
	if loc == nil {
		return nil, NotFound("No location found for this bus")
	}
	return loc, nil
}

// History returns recent samples newest first. The limit is clamped to the configured bounds.
func (s *LocationService) History(ctx context.Context, busID int64, limit int) ([]models.DriverLocation, int, error) {
	limit = ClampLimit(limit, s.defaultLimit, s.maxLimit)

	locations, err := s.locations.History(ctx, busID, limit)
	if err != nil {
		return nil, limit, Internal("Failed to get location history", err)
	}
	return locations, limit, nil
}
