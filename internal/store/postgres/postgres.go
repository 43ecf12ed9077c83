// Package postgres implements the store interfaces over PostgreSQL using
// pgx directly (no ORM). The enroll path wraps the capacity check, the
// duplicate check, and the insert in one transaction holding a row-level
// lock on the mass, with the UNIQUE constraint on (mass_id, volunteer_name)
// as a schema-level safety net.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint breach.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
