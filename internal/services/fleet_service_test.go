package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/smarttransit/bus-tracking-backend/internal/database"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Normalizes the plate", func(t *testing.T) {
		db, mock := newTestDB(t)
		service := NewBusService(database.NewBusRepository(db))

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO buses").
			WithArgs("B-7", "WP NA-1234", int64(2), models.DefaultBusCapacity, nil, nil, "stopped").
			WillReturnRows(sqlmock.NewRows([]string{"bus_id"}).AddRow(int64(30)))
		mock.ExpectExec("INSERT INTO bus_status").
			WithArgs(int64(30)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO activity_logs").
			WithArgs(int64(1), "bus_created", "bus", int64(30), "Bus B-7 (WP NA-1234) created").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		busID, err := service.Create(ctx, &models.CreateBusRequest{
			BusNumber: " B-7 ", RegistrationPlate: "wp na-1234", RouteID: 2,
		}, int64Ptr(1))
		require.NoError(t, err)
		assert.Equal(t, int64(30), busID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate plate is a conflict", func(t *testing.T) {
		db, mock := newTestDB(t)
		service := NewBusService(database.NewBusRepository(db))

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO buses").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "buses_registration_plate_key"})
		mock.ExpectRollback()

		_, err := service.Create(ctx, &models.CreateBusRequest{BusNumber: "B-8", RegistrationPlate: "NA-1", RouteID: 2}, nil)
		require.Error(t, err)
		assert.Equal(t, KindConflict, KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown route", func(t *testing.T) {
		db, mock := newTestDB(t)
		service := NewBusService(database.NewBusRepository(db))

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO buses").
			WillReturnError(&pq.Error{Code: "23503", Constraint: "buses_route_id_fkey"})
		mock.ExpectRollback()

		_, err := service.Create(ctx, &models.CreateBusRequest{BusNumber: "B-9", RegistrationPlate: "NA-2", RouteID: 99}, nil)
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
		assert.Equal(t, "Route 99 does not exist", PublicMessage(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBusService_UpdatePassengers(t *testing.T) {
	db, mock := newTestDB(t)
	service := NewBusService(database.NewBusRepository(db))
	count := 12

	mock.ExpectExec("UPDATE bus_status").
		WithArgs(count, int64(77)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := service.UpdatePassengers(context.Background(), &models.UpdatePassengersRequest{BusID: 77, CurrentPassengers: &count})
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Route with stops is a conflict", func(t *testing.T) {
		db, mock := newTestDB(t)
		service := NewRouteService(database.NewRouteRepository(db))

		mock.ExpectExec("DELETE FROM routes").
			WithArgs(int64(2)).
			WillReturnError(&pq.Error{Code: "23503", Constraint: "stops_route_id_fkey"})

		err := service.Delete(ctx, 2)
		require.Error(t, err)
		assert.Equal(t, KindConflict, KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing route", func(t *testing.T) {
		db, mock := newTestDB(t)
		service := NewRouteService(database.NewRouteRepository(db))

		mock.ExpectExec("DELETE FROM routes").
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := service.Delete(ctx, 3)
		assert.Equal(t, KindNotFound, KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRouteService_AddStop(t *testing.T) {
	db, mock := newTestDB(t)
	service := NewRouteService(database.NewRouteRepository(db))

	mock.ExpectQuery("INSERT INTO stops").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "stops_route_stop_number_key"})

	_, err := service.AddStop(context.Background(), &models.AddStopRequest{RouteID: 1, StopNumber: 2, StopName: "Kadawatha"})
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverService_AssignBus(t *testing.T) {
	ctx := context.Background()

	newService := func(t *testing.T) (*DriverService, sqlmock.Sqlmock) {
		db, mock := newTestDB(t)
		return NewDriverService(
			database.NewBusRepository(db),
			database.NewRouteRepository(db),
			database.NewUserRepository(db),
		), mock
	}

	userRow := func(userType string, active bool) *sqlmock.Rows {
		return sqlmock.NewRows(userColumnNames).
			AddRow(int64(8), userType, "u@example.com", nil, "hash", "Ruwan", nil, active, time.Now())
	}

	t.Run("Success", func(t *testing.T) {
		service, mock := newService(t)

		mock.ExpectQuery("FROM users u").WithArgs(int64(8)).WillReturnRows(userRow("driver", true))
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE buses SET driver_id").
			WithArgs(int64(8), int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO activity_logs").
			WithArgs(int64(1), "bus_assigned", "bus", int64(5), "Driver 8 assigned to bus 5").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := service.AssignBus(ctx, &models.AssignBusRequest{DriverID: 8, BusID: 5}, int64Ptr(1))
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Passenger cannot drive", func(t *testing.T) {
		service, mock := newService(t)
		mock.ExpectQuery("FROM users u").WillReturnRows(userRow("passenger", true))

		err := service.AssignBus(ctx, &models.AssignBusRequest{DriverID: 8, BusID: 5}, nil)
		assert.Equal(t, KindValidation, KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Inactive driver", func(t *testing.T) {
		service, mock := newService(t)
		mock.ExpectQuery("FROM users u").WillReturnRows(userRow("driver", false))

		err := service.AssignBus(ctx, &models.AssignBusRequest{DriverID: 8, BusID: 5}, nil)
		assert.Equal(t, KindValidation, KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown bus", func(t *testing.T) {
		service, mock := newService(t)

		mock.ExpectQuery("FROM users u").WillReturnRows(userRow("driver", true))
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE buses SET driver_id").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := service.AssignBus(ctx, &models.AssignBusRequest{DriverID: 8, BusID: 404}, nil)
		assert.Equal(t, KindNotFound, KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDriverService_RouteStops(t *testing.T) {
	ctx := context.Background()
	db, mock := newTestDB(t)
	service := NewDriverService(database.NewBusRepository(db), database.NewRouteRepository(db), database.NewUserRepository(db))

	mock.ExpectQuery("SELECT route_id FROM buses").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"route_id"}).AddRow(nil))
	mock.ExpectQuery("SELECT route_id FROM buses").
		WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"route_id"}))

	stops, err := service.RouteStops(ctx, 5)
	require.NoError(t, err)
	assert.NotNil(t, stops)
	assert.Empty(t, stops)

	_, err = service.RouteStops(ctx, 6)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()
	db, mock := newTestDB(t)
	activity := NewActivityService(database.NewActivityLogRepository(db), true, 500)
	service := NewUserService(database.NewUserRepository(db), activity, nil, 4)

	err := service.Delete(ctx, 1, int64Ptr(1))
	assert.Equal(t, KindValidation, KindOf(err))

	mock.ExpectExec("DELETE FROM users").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = service.Delete(ctx, 9, int64Ptr(1))
	assert.Equal(t, KindNotFound, KindOf(err))

	// a driver's location trail outlives the account
	mock.ExpectExec("DELETE FROM users").
		WithArgs(int64(8)).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "driver_locations_driver_id_fkey"})

	err = service.Delete(ctx, 8, int64Ptr(1))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBusService_Delete(t *testing.T) {
	ctx := context.Background()
	db, mock := newTestDB(t)
	service := NewBusService(database.NewBusRepository(db))

	mock.ExpectExec("DELETE FROM buses").
		WithArgs(int64(4)).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "driver_locations_bus_id_fkey"})

	err := service.Delete(ctx, 4)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	mock.ExpectExec("DELETE FROM buses").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, service.Delete(ctx, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_ListRejectsUnknownType(t *testing.T) {
	db, mock := newTestDB(t)
	service := NewUserService(database.NewUserRepository(db), nil, nil, 4)

	_, err := service.List(context.Background(), "conductor")
	assert.Equal(t, KindValidation, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
