// Package store declares the persistence interfaces for the scheduler's
// three relations (volunteers, masses, enrollments) and the sentinel
// errors every backend must return. Two implementations exist:
// store/postgres (pgx, transactional) and store/memory (mutex-guarded,
// used by tests and database-less local runs).
package store

import (
	"context"
	"errors"

	"github.com/rbarroso/acolyte-scheduler/internal/model"
)

// ErrNotFound is returned when a referenced mass or volunteer does not exist.
var ErrNotFound = errors.New("not found")

// ErrMassFull is returned when a mass has no remaining seats.
var ErrMassFull = errors.New("mass is fully booked")

// ErrAlreadyEnrolled is returned when the same volunteer enrolls twice
// in one mass.
var ErrAlreadyEnrolled = errors.New("volunteer already enrolled in this mass")

// ErrDuplicateName is returned when a volunteer name is already registered.
var ErrDuplicateName = errors.New("volunteer name already registered")

// Directory persists volunteer identities.
type Directory interface {
	// CreateVolunteer stores a new identity. Returns ErrDuplicateName if
	// the name already exists.
	CreateVolunteer(ctx context.Context, name string) error

	// DeleteVolunteer removes the identity if present and reports whether
	// a removal occurred. Absence is not an error.
	DeleteVolunteer(ctx context.Context, name string) (bool, error)

	// ListVolunteers returns all volunteers ordered by name ascending.
	ListVolunteers(ctx context.Context) ([]model.Volunteer, error)
}

// Catalog persists masses. Listings are annotated with the current
// filled-seat count and the sorted enrolled names, read from the ledger
// relation at query time.
type Catalog interface {
	// CreateMass stores a new mass. The caller supplies the surrogate ID.
	CreateMass(ctx context.Context, m model.Mass) error

	// GetMass returns a single mass or ErrNotFound.
	GetMass(ctx context.Context, id string) (*model.Mass, error)

	// DeleteMass removes the mass and, atomically, every enrollment
	// referencing it. Returns ErrNotFound if the mass does not exist.
	DeleteMass(ctx context.Context, id string) error

	// ListMassesFrom returns masses with date >= fromDate, ordered by
	// (date, time) ascending.
	ListMassesFrom(ctx context.Context, fromDate string) ([]model.MassSummary, error)

	// ListMasses returns every mass, ordered by (date, time) descending.
	ListMasses(ctx context.Context) ([]model.MassSummary, error)
}

// Ledger persists enrollments and is the sole authority for the capacity
// and uniqueness invariants.
type Ledger interface {
	// IsEnrolled reports whether the (mass, volunteer) pair exists.
	IsEnrolled(ctx context.Context, massID, name string) (bool, error)

	// Enroll inserts the pair iff the mass exists, has a free seat, and
	// the pair is not already present — all evaluated atomically against
	// one consistent snapshot. Failures are ErrNotFound, ErrMassFull, or
	// ErrAlreadyEnrolled.
	Enroll(ctx context.Context, massID, name string) error

	// Withdraw removes the pair if present and reports whether a removal
	// occurred.
	Withdraw(ctx context.Context, massID, name string) (bool, error)

	// ListEnrolled returns the enrolled names for a mass, ascending.
	// A deleted or unknown mass yields an empty list.
	ListEnrolled(ctx context.Context, massID string) ([]string, error)

	// ListScorable returns every enrollment joined with its mass's
	// schedule, for leaderboard computation.
	ListScorable(ctx context.Context) ([]model.ScorableEnrollment, error)
}
