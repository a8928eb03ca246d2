package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// IsExclusionConflict reports whether err comes from the database refusing an
// overlapping or duplicate row. With the appointments exclusion constraint in
// place this is the last line against double booking.
func IsExclusionConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgExclusionViolation || pgErr.Code == pgUniqueViolation
}
