package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/smarttransit/bus-tracking-backend/internal/config"
	"github.com/smarttransit/bus-tracking-backend/internal/database"
	"github.com/smarttransit/bus-tracking-backend/internal/metrics"
	"github.com/smarttransit/bus-tracking-backend/internal/middleware"
	"github.com/smarttransit/bus-tracking-backend/internal/services"
	"github.com/smarttransit/bus-tracking-backend/pkg/jwt"
	"github.com/smarttransit/bus-tracking-backend/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

type testServer struct {
	router *gin.Engine
	mock   sqlmock.Sqlmock
	jwt    *jwt.Service
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	db := database.NewFromSQL(sqlDB, "sqlmock")

	collector := metrics.NewCollector()
	jwtService := jwt.NewService("handler-access-secret", "handler-refresh-secret", time.Hour, 24*time.Hour)
	tracking := config.TrackingConfig{HistoryDefaultLimit: 50, HistoryMaxLimit: 500}

	userRepo := database.NewUserRepository(db)
	busRepo := database.NewBusRepository(db)
	routeRepo := database.NewRouteRepository(db)
	activity := services.NewActivityService(database.NewActivityLogRepository(db), true, 500)
	userService := services.NewUserService(userRepo, activity, validator.NewPhoneValidator(), bcrypt.MinCost)

	h := &Handlers{
		Auth: NewAuthHandler(services.NewAuthService(
			userRepo, database.NewRefreshTokenRepository(db), userService, activity, jwtService)),
		Buses:     NewBusHandler(services.NewBusService(busRepo)),
		Routes:    NewRouteHandler(services.NewRouteService(routeRepo)),
		Users:     NewUserHandler(userService),
		Drivers:   NewDriverHandler(services.NewDriverService(busRepo, routeRepo, userRepo)),
		Locations: NewLocationHandler(services.NewLocationService(database.NewLocationRepository(db), nil, collector, tracking)),
		Trips:     NewTripHandler(services.NewTripService(busRepo, collector)),
		Logs:      NewLogHandler(activity),
		Analytics: NewAnalyticsHandler(services.NewAnalyticsService(database.NewAnalyticsRepository(db))),
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	h.RegisterRoutes(router, middleware.AuthMiddleware(jwtService), fakePinger{}, collector.Handler())

	return &testServer{router: router, mock: mock, jwt: jwtService}
}

func (s *testServer) token(t *testing.T, userID int64, userType string) string {
	token, err := s.jwt.GenerateAccessToken(userID, "user@example.com", userType)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, url, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), w.Body.String())
	}
	return w, decoded
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Connected", func(t *testing.T) {
		router := gin.New()
		router.GET("/health", Health(fakePinger{}))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"message":"API healthy","db":"connected"}`, w.Body.String())
	})

	t.Run("Disconnected", func(t *testing.T) {
		router := gin.New()
		router.GET("/health", Health(fakePinger{err: errors.New("dial tcp: connection refused")}))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestDispatch(t *testing.T) {
	s := setupTestServer(t)
	passenger := s.token(t, 5, "passenger")

	t.Run("Unknown action", func(t *testing.T) {
		w, body := s.do(t, http.MethodGet, "/api/v1/buses?action=teleport", passenger, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "unknown_action", body["error_code"])
	})

	t.Run("Missing action", func(t *testing.T) {
		w, body := s.do(t, http.MethodGet, "/api/v1/routes", passenger, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "unknown_action", body["error_code"])
	})

	t.Run("Role gate", func(t *testing.T) {
		w, body := s.do(t, http.MethodPost, "/api/v1/buses?action=create", passenger, map[string]interface{}{
			"bus_number": "B-1", "registration_plate": "NA-1", "route_id": 1,
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "forbidden", body["error_code"])
	})

	t.Run("Logs are admin only", func(t *testing.T) {
		w, _ := s.do(t, http.MethodGet, "/api/v1/logs?action=recent", s.token(t, 8, "driver"), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Authentication required", func(t *testing.T) {
		w, body := s.do(t, http.MethodGet, "/api/v1/buses?action=list", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "unauthorized", body["error_code"])
	})

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestBusHandler(t *testing.T) {
	s := setupTestServer(t)
	adminToken := s.token(t, 1, "admin")

	t.Run("Stats", func(t *testing.T) {
		s.mock.ExpectQuery("FROM buses").
			WillReturnRows(sqlmock.NewRows([]string{"total", "active", "inactive"}).AddRow(3, 2, 1))

		w, body := s.do(t, http.MethodGet, "/api/v1/buses?action=stats", adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Stats retrieved", body["message"])
		assert.Equal(t, float64(3), body["total"])
		assert.Equal(t, float64(1), body["inactive"])
	})

	t.Run("Get requires id", func(t *testing.T) {
		w, body := s.do(t, http.MethodGet, "/api/v1/buses?action=get&id=abc", adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", body["error_code"])
	})

	t.Run("Store failure is opaque", func(t *testing.T) {
		s.mock.ExpectExec("DELETE FROM buses").
			WithArgs(int64(4)).
			WillReturnError(errors.New("pq: relation \"buses\" does not exist"))

		w, body := s.do(t, http.MethodDelete, "/api/v1/buses?action=delete&id=4", adminToken, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal_error", body["error_code"])
		assert.Equal(t, "Internal server error", body["message"])
		assert.NotContains(t, w.Body.String(), "relation")
	})

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

var locationColumns = []string{
	"location_id", "bus_id", "driver_id", "latitude", "longitude",
	"speed_kmh", "accuracy_meters", "created_at",
}

func TestLocationHandler(t *testing.T) {
	s := setupTestServer(t)
	driverToken := s.token(t, 8, "driver")

	t.Run("Update", func(t *testing.T) {
		s.mock.ExpectBegin()
		s.mock.ExpectQuery("INSERT INTO driver_locations").
			WithArgs(int64(4), int64(8), 6.9271, 79.8612, 32.0, 0.0).
			WillReturnRows(sqlmock.NewRows([]string{"location_id", "created_at"}).AddRow(int64(900), time.Now()))
		s.mock.ExpectExec("UPDATE bus_status").WillReturnResult(sqlmock.NewResult(0, 1))
		s.mock.ExpectCommit()

		w, body := s.do(t, http.MethodPost, "/api/v1/locations?action=update", driverToken, map[string]interface{}{
			"bus_id": 4, "driver_id": 8, "latitude": 6.9271, "longitude": 79.8612, "speed_kmh": 32,
		})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, float64(900), body["location_id"])
	})

	t.Run("Drivers cannot report for another driver", func(t *testing.T) {
		w, body := s.do(t, http.MethodPost, "/api/v1/locations?action=update", driverToken, map[string]interface{}{
			"bus_id": 4, "driver_id": 9, "latitude": 6.9, "longitude": 79.8,
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "forbidden", body["error_code"])
		assert.NoError(t, s.mock.ExpectationsWereMet())
	})

	t.Run("Passengers cannot report", func(t *testing.T) {
		w, _ := s.do(t, http.MethodPost, "/api/v1/locations?action=update", s.token(t, 5, "passenger"), map[string]interface{}{
			"bus_id": 4, "driver_id": 8, "latitude": 6.9, "longitude": 79.8,
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("History is capped", func(t *testing.T) {
		s.mock.ExpectQuery("FROM driver_locations").
			WithArgs(int64(4), 500).
			WillReturnRows(sqlmock.NewRows(locationColumns))

		w, body := s.do(t, http.MethodGet, "/api/v1/locations?action=history&bus_id=4&limit=10000", driverToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(500), body["limit"])
		assert.Equal(t, float64(0), body["count"])
	})

	t.Run("History as GeoJSON is chronological", func(t *testing.T) {
		now := time.Now()
		s.mock.ExpectQuery("FROM driver_locations").
			WithArgs(int64(4), 50).
			WillReturnRows(sqlmock.NewRows(locationColumns).
				AddRow(int64(3), int64(4), int64(8), 6.3, 80.3, 30.0, 5.0, now).
				AddRow(int64(2), int64(4), int64(8), 6.2, 80.2, 30.0, 5.0, now.Add(-time.Minute)).
				AddRow(int64(1), int64(4), int64(8), 6.1, 80.1, 30.0, 5.0, now.Add(-2*time.Minute)))

		w, body := s.do(t, http.MethodGet, "/api/v1/locations?action=history&bus_id=4&format=geojson", driverToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		feature := body["feature"].(map[string]interface{})
		assert.Equal(t, "Feature", feature["type"])
		geometry := feature["geometry"].(map[string]interface{})
		assert.Equal(t, "LineString", geometry["type"])
		assert.Equal(t, []interface{}{
			[]interface{}{80.1, 6.1},
			[]interface{}{80.2, 6.2},
			[]interface{}{80.3, 6.3},
		}, geometry["coordinates"])
	})

	t.Run("Current not found", func(t *testing.T) {
		s.mock.ExpectQuery("FROM driver_locations").
			WithArgs(int64(77)).
			WillReturnRows(sqlmock.NewRows(locationColumns))

		w, body := s.do(t, http.MethodGet, "/api/v1/locations?action=current&bus_id=77", driverToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not_found", body["error_code"])
	})

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestTripHandler(t *testing.T) {
	s := setupTestServer(t)
	driverToken := s.token(t, 8, "driver")

	t.Run("Resume", func(t *testing.T) {
		s.mock.ExpectBegin()
		s.mock.ExpectQuery("SELECT status FROM buses").
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("paused"))
		s.mock.ExpectExec("UPDATE buses SET status").WillReturnResult(sqlmock.NewResult(0, 1))
		s.mock.ExpectExec("INSERT INTO activity_logs").
			WithArgs(int64(8), "trip_resumed", "bus", int64(4), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		s.mock.ExpectCommit()

		w, body := s.do(t, http.MethodPost, "/api/v1/trips?action=resume", driverToken, map[string]interface{}{"bus_id": 4})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Trip resumed successfully", body["message"])
		assert.Equal(t, "active", body["status"])
		assert.Equal(t, true, body["is_running"])
	})

	t.Run("Invalid transition", func(t *testing.T) {
		s.mock.ExpectBegin()
		s.mock.ExpectQuery("SELECT status FROM buses").
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("stopped"))
		s.mock.ExpectRollback()

		w, body := s.do(t, http.MethodPost, "/api/v1/trips?action=pause", driverToken, map[string]interface{}{"bus_id": 4})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "invalid_transition", body["error_code"])
	})

	t.Run("Missing bus_id", func(t *testing.T) {
		w, body := s.do(t, http.MethodPost, "/api/v1/trips?action=end", driverToken, map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", body["error_code"])
	})

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestAnalyticsHandler_Overview(t *testing.T) {
	s := setupTestServer(t)

	s.mock.ExpectQuery("SELECT(.+)total_buses").
		WillReturnRows(sqlmock.NewRows([]string{
			"total_buses", "active_buses", "trips_today", "total_distance_km", "total_passengers",
		}).AddRow(3, 2, 2, 231.0, 64))

	w, body := s.do(t, http.MethodGet, "/api/v1/analytics?action=overview", s.token(t, 5, "passenger"), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(3), body["total_buses"])
	assert.Equal(t, float64(2), body["active_buses"])
	assert.Equal(t, float64(1), body["inactive_buses"])
	assert.Equal(t, float64(2), body["trips_today"])
	assert.Equal(t, 231.0, body["total_distance_km"])
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestAuthHandler(t *testing.T) {
	s := setupTestServer(t)
	userColumns := []string{
		"user_id", "user_type", "email", "phone", "password_hash", "full_name",
		"license_number", "is_active", "created_at",
	}

	t.Run("Login", func(t *testing.T) {
		hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
		require.NoError(t, err)

		s.mock.ExpectQuery("FROM users u WHERE LOWER").
			WithArgs("admin@example.com", nil).
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(int64(1), "admin", "admin@example.com", nil, string(hash), "Fleet Admin", nil, true, time.Now()))
		s.mock.ExpectExec("INSERT INTO activity_logs").WillReturnResult(sqlmock.NewResult(1, 1))
		s.mock.ExpectExec("INSERT INTO refresh_tokens").WillReturnResult(sqlmock.NewResult(1, 1))

		w, body := s.do(t, http.MethodPost, "/api/v1/auth?action=login", "", map[string]interface{}{
			"email": "admin@example.com", "password": "s3cret!",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Login successful", body["message"])
		assert.Equal(t, "admin", body["user_type"])
		assert.NotEmpty(t, body["token"])
		assert.NotEmpty(t, body["refresh_token"])
		assert.Equal(t, float64(3600), body["expires_in"])
	})

	t.Run("Wrong password", func(t *testing.T) {
		hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
		require.NoError(t, err)

		s.mock.ExpectQuery("FROM users u WHERE LOWER").
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(int64(1), "admin", "admin@example.com", nil, string(hash), "Fleet Admin", nil, true, time.Now()))

		w, body := s.do(t, http.MethodPost, "/api/v1/auth?action=login", "", map[string]interface{}{
			"email": "admin@example.com", "password": "password123",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid_credentials", body["error_code"])
	})

	t.Run("Register duplicate email", func(t *testing.T) {
		s.mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		w, body := s.do(t, http.MethodPost, "/api/v1/auth?action=register", "", map[string]interface{}{
			"email": "dup@example.com", "password": "secret1", "full_name": "Dup",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "email_taken", body["error_code"])
	})

	t.Run("Register rejects a malformed email", func(t *testing.T) {
		w, body := s.do(t, http.MethodPost, "/api/v1/auth?action=register", "", map[string]interface{}{
			"email": "not-an-email", "password": "secret1", "full_name": "X",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", body["error_code"])
	})

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupTestServer(t)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
