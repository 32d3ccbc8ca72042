package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
)

// ErrNotFound is returned by operations that must address an existing row
var ErrNotFound = errors.New("record not found")

// BusRepository handles database operations for buses and their live status
type BusRepository struct {
	db DB
}

// NewBusRepository creates a new BusRepository
func NewBusRepository(db DB) *BusRepository {
	return &BusRepository{db: db}
}

const busDetailSelect = `
	SELECT b.bus_id, b.bus_number, b.registration_plate, b.route_id, b.driver_id,
	       b.capacity, b.model, b.color, b.status, b.created_at,
	       r.route_number, r.route_name, u.full_name AS driver_name,
	       bs.current_latitude, bs.current_longitude,
	       COALESCE(bs.current_passengers, 0) AS current_passengers,
	       COALESCE(bs.is_running, FALSE) AS is_running,
	       bs.last_update,
	       dl.speed_kmh, dl.created_at AS last_location_at
	FROM buses b
	LEFT JOIN routes r ON r.route_id = b.route_id
	LEFT JOIN users u ON u.user_id = b.driver_id
	LEFT JOIN bus_status bs ON bs.bus_id = b.bus_id
	LEFT JOIN LATERAL (
		SELECT speed_kmh, created_at
		FROM driver_locations
		WHERE bus_id = b.bus_id
		ORDER BY created_at DESC, location_id DESC
		LIMIT 1
	) dl ON TRUE
`

// List returns every bus with its route, driver and live status
func (r *BusRepository) List(ctx context.Context) ([]models.BusDetail, error) {
	buses := []models.BusDetail{}
	query := busDetailSelect + ` ORDER BY b.bus_number, b.bus_id`

	if err := r.db.SelectContext(ctx, &buses, query); err != nil {
		return nil, fmt.Errorf("failed to list buses: %w", err)
	}
	return buses, nil
}

// GetByID retrieves a bus by ID, returning nil when it does not exist
func (r *BusRepository) GetByID(ctx context.Context, busID int64) (*models.BusDetail, error) {
	var bus models.BusDetail
	query := busDetailSelect + ` WHERE b.bus_id = $1`

	err := r.db.GetContext(ctx, &bus, query, busID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bus %d: %w", busID, err)
	}
	return &bus, nil
}

// Create inserts a bus together with its status row. New buses start stopped.
func (r *BusRepository) Create(ctx context.Context, req *models.CreateBusRequest, actorID *int64) (int64, error) {
	capacity := models.DefaultBusCapacity
	if req.Capacity != nil {
		capacity = *req.Capacity
	}

	var busID int64
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO buses (bus_number, registration_plate, route_id, capacity, model, color, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING bus_id
		`, req.BusNumber, req.RegistrationPlate, req.RouteID, capacity, req.Model, req.Color,
			models.TripStateStopped,
		).Scan(&busID)
		if err != nil {
			return fmt.Errorf("failed to create bus: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO bus_status (bus_id) VALUES ($1)`, busID); err != nil {
			return fmt.Errorf("failed to create bus status: %w", err)
		}

		return insertActivity(ctx, tx, ActivityEntry{
			UserID:      actorID,
			ActionType:  "bus_created",
			EntityType:  models.EntityBus,
			EntityID:    &busID,
			Description: fmt.Sprintf("Bus %s (%s) created", req.BusNumber, req.RegistrationPlate),
		})
	})
	if err != nil {
		return 0, err
	}
	return busID, nil
}

// UpdatePassengers sets the live passenger count; false when the bus has no status row
func (r *BusRepository) UpdatePassengers(ctx context.Context, busID int64, passengers int) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bus_status
		SET current_passengers = $1, last_update = NOW()
		WHERE bus_id = $2
	`, passengers, busID)
	if err != nil {
		return false, fmt.Errorf("failed to update passengers for bus %d: %w", busID, err)
	}
	return affectedOne(result)
}

// Delete hard-deletes a bus. Its status row cascades; a bus with location
// history is refused by the store.
func (r *BusRepository) Delete(ctx context.Context, busID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM buses WHERE bus_id = $1`, busID)
	if err != nil {
		return false, fmt.Errorf("failed to delete bus %d: %w", busID, err)
	}
	return affectedOne(result)
}

// Counts returns total, active and inactive bus counts
func (r *BusRepository) Counts(ctx context.Context) (*models.EntityCounts, error) {
	var counts models.EntityCounts
	err := r.db.GetContext(ctx, &counts, `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE status = 'active') AS active,
		       COUNT(*) FILTER (WHERE status <> 'active') AS inactive
		FROM buses
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count buses: %w", err)
	}
	return &counts, nil
}

// AssignDriver overwrites the bus's driver. An unknown bus rolls back and
// reports found=false.
func (r *BusRepository) AssignDriver(ctx context.Context, busID, driverID int64, actorID *int64) (bool, error) {
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `UPDATE buses SET driver_id = $1 WHERE bus_id = $2`, driverID, busID)
		if err != nil {
			return fmt.Errorf("failed to assign driver %d to bus %d: %w", driverID, busID, err)
		}
		found, err := affectedOne(result)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}

		return insertActivity(ctx, tx, ActivityEntry{
			UserID:      actorID,
			ActionType:  "bus_assigned",
			EntityType:  models.EntityBus,
			EntityID:    &busID,
			Description: fmt.Sprintf("Driver %d assigned to bus %d", driverID, busID),
		})
	})
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetAssignmentForDriver returns the bus a driver is assigned to, or nil
func (r *BusRepository) GetAssignmentForDriver(ctx context.Context, driverID int64) (*models.DriverAssignment, error) {
	var assignment models.DriverAssignment
	err := r.db.GetContext(ctx, &assignment, `
		SELECT b.bus_id, b.bus_number, b.registration_plate, b.capacity, b.status,
		       b.route_id, r.route_number, r.route_name, r.start_location, r.end_location, r.distance_km,
		       bs.current_latitude, bs.current_longitude,
		       COALESCE(bs.current_passengers, 0) AS current_passengers,
		       COALESCE(bs.is_running, FALSE) AS is_running,
		       bs.last_update,
		       (SELECT COUNT(*) FROM stops s WHERE s.route_id = b.route_id) AS total_stops
		FROM buses b
		LEFT JOIN routes r ON r.route_id = b.route_id
		LEFT JOIN bus_status bs ON bs.bus_id = b.bus_id
		WHERE b.driver_id = $1
		ORDER BY b.bus_id
		LIMIT 1
	`, driverID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get assignment for driver %d: %w", driverID, err)
	}
	return &assignment, nil
}

// GetStatus returns the live status of a bus, or nil when it has none
func (r *BusRepository) GetStatus(ctx context.Context, busID int64) (*models.BusStatus, error) {
	var status models.BusStatus
	err := r.db.GetContext(ctx, &status, `
		SELECT bs.bus_id, bs.current_latitude, bs.current_longitude, bs.current_passengers,
		       bs.is_running, bs.last_update, b.status
		FROM bus_status bs
		JOIN buses b ON b.bus_id = bs.bus_id
		WHERE bs.bus_id = $1
	`, busID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get status for bus %d: %w", busID, err)
	}
	return &status, nil
}

// GetRouteID returns the route a bus serves. found is false when the bus does not exist.
func (r *BusRepository) GetRouteID(ctx context.Context, busID int64) (*int64, bool, error) {
	var routeID sql.NullInt64
	err := r.db.QueryRowxContext(ctx, `SELECT route_id FROM buses WHERE bus_id = $1`, busID).Scan(&routeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get route for bus %d: %w", busID, err)
	}

	if !routeID.Valid {
		return nil, true, nil
	}
	id := routeID.Int64
	return &id, true, nil
}

// TransitionTrip applies a lifecycle action under a row lock so concurrent
// transitions on the same bus are serialized. is_running is rewritten only when
// the action moves the bus into or out of stopped.
func (r *BusRepository) TransitionTrip(ctx context.Context, busID int64, action models.TripAction, actorID *int64) (*models.TripTransition, error) {
	var transition *models.TripTransition

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var stored string
		err := tx.QueryRowxContext(ctx, `SELECT status FROM buses WHERE bus_id = $1 FOR UPDATE`, busID).Scan(&stored)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock bus %d: %w", busID, err)
		}

		from := models.ParseTripState(stored)
		to, err := from.Apply(action)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `UPDATE buses SET status = $1 WHERE bus_id = $2`, to, busID); err != nil {
			return fmt.Errorf("failed to update status of bus %d: %w", busID, err)
		}

		if from.IsRunning() != to.IsRunning() {
			_, err := tx.ExecContext(ctx, `
				UPDATE bus_status
				SET is_running = $1, last_update = NOW()
				WHERE bus_id = $2
			`, to.IsRunning(), busID)
			if err != nil {
				return fmt.Errorf("failed to update running flag of bus %d: %w", busID, err)
			}
		}

		if err := insertActivity(ctx, tx, ActivityEntry{
			UserID:      actorID,
			ActionType:  action.ActivityType(),
			EntityType:  models.EntityBus,
			EntityID:    &busID,
			Description: fmt.Sprintf("Trip %s for bus ID %d", action.PastTense(), busID),
		}); err != nil {
			return err
		}

		transition = &models.TripTransition{
			BusID:     busID,
			Action:    action,
			From:      from,
			To:        to,
			IsRunning: to.IsRunning(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transition, nil
}

func affectedOne(result sql.Result) (bool, error) {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}
