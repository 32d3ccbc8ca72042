package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
)

// LocationRepository handles driver_locations and the bus_status position cache
type LocationRepository struct {
	db DB
}

// NewLocationRepository creates a new LocationRepository
func NewLocationRepository(db DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Insert appends a GPS sample and overwrites the bus's cached position in one
// transaction. is_running is never touched here.
func (r *LocationRepository) Insert(ctx context.Context, loc *models.DriverLocation) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO driver_locations (bus_id, driver_id, latitude, longitude, speed_kmh, accuracy_meters)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING location_id, created_at
		`, loc.BusID, loc.DriverID, loc.Latitude, loc.Longitude, loc.SpeedKmh, loc.AccuracyMeters,
		).Scan(&loc.ID, &loc.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert location for bus %d: %w", loc.BusID, err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE bus_status
			SET current_latitude = $1, current_longitude = $2, last_update = NOW()
			WHERE bus_id = $3
		`, loc.Latitude, loc.Longitude, loc.BusID)
		if err != nil {
			return fmt.Errorf("failed to update position cache for bus %d: %w", loc.BusID, err)
		}
		return nil
	})
}

const locationSelect = `
	SELECT location_id, bus_id, driver_id, latitude, longitude,
	       speed_kmh, accuracy_meters, created_at
	FROM driver_locations
	WHERE bus_id = $1
	ORDER BY created_at DESC, location_id DESC
`

// Current returns the newest sample for a bus, or nil when none exists
func (r *LocationRepository) Current(ctx context.Context, busID int64) (*models.DriverLocation, error) {
	var loc models.DriverLocation
	err := r.db.GetContext(ctx, &loc, locationSelect+` LIMIT 1`, busID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get current location for bus %d: %w", busID, err)
	}
	return &loc, nil
}

// History returns up to limit samples for a bus, newest first
func (r *LocationRepository) History(ctx context.Context, busID int64, limit int) ([]models.DriverLocation, error) {
	locations := []models.DriverLocation{}
	if err := r.db.SelectContext(ctx, &locations, locationSelect+` LIMIT $2`, busID, limit); err != nil {
		return nil, fmt.Errorf("failed to get location history for bus %d: %w", busID, err)
	}
	return locations, nil
}

// DeleteOlderThan prunes samples recorded before cutoff
func (r *LocationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM driver_locations WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune driver locations: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}
