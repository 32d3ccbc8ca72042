package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes only the route row", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewRouteRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM routes WHERE route_id = $1")).
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		found, err := repo.Delete(ctx, 3)
		require.NoError(t, err)
		assert.True(t, found)
		// any statement against stops would be an unexpected call
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Route with stops is refused by the store", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewRouteRepository(db)

		mock.ExpectExec("DELETE FROM routes").
			WithArgs(int64(4)).
			WillReturnError(&pq.Error{Code: "23503", Constraint: "stops_route_id_fkey"})

		found, err := repo.Delete(ctx, 4)
		require.Error(t, err)
		assert.False(t, found)
		assert.True(t, IsForeignKeyViolation(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRouteRepository_Create(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewRouteRepository(db)

	distance := 115.5
	req := &models.CreateRouteRequest{
		RouteNumber: "1",
		RouteName:   "Colombo - Kandy",
		DistanceKm:  &distance,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO routes").
		WithArgs("1", "Colombo - Kandy", nil, nil, 115.5, nil).
		WillReturnRows(sqlmock.NewRows([]string{"route_id"}).AddRow(int64(6)))
	mock.ExpectExec("INSERT INTO activity_logs").
		WithArgs(int64(1), "route_created", "route", int64(6), "Route 1 - Colombo - Kandy created").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	routeID, err := repo.Create(ctx, req, int64Ptr(1))
	require.NoError(t, err)
	assert.Equal(t, int64(6), routeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteRepository_ListActive(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewRouteRepository(db)
	now := time.Now()

	mock.ExpectQuery("FROM routes r WHERE r.is_active = TRUE ORDER BY r.route_number").
		WillReturnRows(sqlmock.NewRows([]string{
			"route_id", "route_number", "route_name", "start_location", "end_location",
			"distance_km", "estimated_time_minutes", "is_active", "created_at", "stop_count",
		}).
			AddRow(int64(1), "1", "Colombo - Kandy", "Colombo", "Kandy", 115.5, 180, true, now, 12).
			AddRow(int64(2), "2", "Colombo - Galle", nil, nil, nil, nil, true, now, 0))

	routes, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, 12, routes[0].StopCount)
	assert.Nil(t, routes[1].DistanceKm)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteRepository_ListStops(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewRouteRepository(db)

	mock.ExpectQuery("FROM stops WHERE route_id = (.+) ORDER BY stop_number").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"stop_id", "route_id", "stop_number", "stop_name", "latitude", "longitude"}).
			AddRow(int64(10), int64(1), 1, "Fort", 6.93, 79.85).
			AddRow(int64(11), int64(1), 2, "Kelaniya", 6.95, 79.92))

	stops, err := repo.ListStops(ctx, 1)
	require.NoError(t, err)
	require.Len(t, stops, 2)
	assert.Equal(t, "Fort", stops[0].StopName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
