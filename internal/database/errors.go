package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Postgres SQLSTATE codes the application branches on
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// pgCode extracts the SQLSTATE from either supported driver's error type
func pgCode(err error) (code, constraint string) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// IsUniqueViolation reports whether err is a unique constraint failure
func IsUniqueViolation(err error) bool {
	code, _ := pgCode(err)
	return code == uniqueViolation
}

// IsForeignKeyViolation reports whether err is a foreign key failure
func IsForeignKeyViolation(err error) bool {
	code, _ := pgCode(err)
	return code == foreignKeyViolation
}

// ConstraintName returns the violated constraint, if the driver reported one
func ConstraintName(err error) string {
	_, constraint := pgCode(err)
	return constraint
}
