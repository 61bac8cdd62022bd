package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pgUniqueViolationCode    = "23505"
	pgExclusionViolationCode = "23P01"
)

// IsUniqueViolation reports whether the provided error references a Postgres
// unique violation constraint. When constraintName is provided, the helper looks
// for the constraint text in the error message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if code := pgErrorCode(err); code == pgUniqueViolationCode {
		return constraintName == "" || strings.Contains(err.Error(), constraintName)
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}

// IsExclusionViolation reports whether the error is a Postgres exclusion
// constraint violation, such as two bookings claiming overlapping slot ranges.
func IsExclusionViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if code := pgErrorCode(err); code == pgExclusionViolationCode {
		return constraintName == "" || strings.Contains(err.Error(), constraintName)
	}
	return strings.Contains(err.Error(), "conflicting key value violates exclusion constraint")
}

func pgErrorCode(err error) string {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
