package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/smarttransit/bus-tracking-backend/internal/database"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) (*database.PostgresDB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return database.NewFromSQL(db, "sqlmock"), mock
}

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }

var userColumnNames = []string{
	"user_id", "user_type", "email", "phone", "password_hash", "full_name",
	"license_number", "is_active", "created_at",
}
