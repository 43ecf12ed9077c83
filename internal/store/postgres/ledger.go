package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rbarroso/acolyte-scheduler/internal/model"
	"github.com/rbarroso/acolyte-scheduler/internal/store"
)

// Ledger persists enrollments and enforces the capacity and uniqueness
// invariants.
type Ledger struct {
	db *pgxpool.Pool
}

// NewLedger constructs a Ledger.
func NewLedger(db *pgxpool.Pool) *Ledger {
	return &Ledger{db: db}
}

// IsEnrolled reports whether the (mass, volunteer) pair exists.
func (l *Ledger) IsEnrolled(ctx context.Context, massID, name string) (bool, error) {
	var enrolled bool
	err := l.db.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM enrollments WHERE mass_id = $1 AND volunteer_name = $2
		 )`,
		massID, name,
	).Scan(&enrolled)
	if err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return enrolled, nil
}

// Enroll claims a seat inside a serialized transaction.
//
// Two concurrent enrollments racing for the last seat must end with
// exactly one success, so the whole check-then-insert sequence is
// serialized per mass: SELECT … FOR UPDATE takes a row-level exclusive
// lock on the mass, blocking any concurrent Enroll for the same mass
// until this transaction resolves. The seat count and the duplicate
// check therefore read the same snapshot the insert writes into.
//
// The UNIQUE (mass_id, volunteer_name) constraint backs the duplicate
// check: even if a code path ever inserts without the lock, the store
// itself rejects the second pair.
func (l *Ledger) Enroll(ctx context.Context, massID, name string) (err error) {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Lock the mass row and read its capacity.
	var capacity int
	err = tx.QueryRow(ctx,
		`SELECT capacity FROM masses WHERE id = $1 FOR UPDATE`,
		massID,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrNotFound
		}
		return fmt.Errorf("lock mass row: %w", err)
	}

	// Seat count is stable while the lock is held.
	var filled int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE mass_id = $1`,
		massID,
	).Scan(&filled)
	if err != nil {
		return fmt.Errorf("count enrollments: %w", err)
	}
	if filled >= capacity {
		return store.ErrMassFull
	}

	var dup bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM enrollments WHERE mass_id = $1 AND volunteer_name = $2
		 )`,
		massID, name,
	).Scan(&dup)
	if err != nil {
		return fmt.Errorf("check duplicate: %w", err)
	}
	if dup {
		return store.ErrAlreadyEnrolled
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO enrollments (id, mass_id, volunteer_name)
		 VALUES ($1, $2, $3)`,
		uuid.New().String(), massID, name,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyEnrolled
		}
		return fmt.Errorf("insert enrollment: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Withdraw removes the pair if present.
func (l *Ledger) Withdraw(ctx context.Context, massID, name string) (bool, error) {
	tag, err := l.db.Exec(ctx,
		`DELETE FROM enrollments WHERE mass_id = $1 AND volunteer_name = $2`,
		massID, name,
	)
	if err != nil {
		return false, fmt.Errorf("delete enrollment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListEnrolled returns the enrolled names for a mass, ascending.
func (l *Ledger) ListEnrolled(ctx context.Context, massID string) ([]string, error) {
	rows, err := l.db.Query(ctx,
		`SELECT volunteer_name FROM enrollments
		 WHERE mass_id = $1
		 ORDER BY volunteer_name ASC`,
		massID,
	)
	if err != nil {
		return nil, fmt.Errorf("list enrolled: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan enrolled name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ListScorable returns every enrollment joined with its mass's schedule.
func (l *Ledger) ListScorable(ctx context.Context) ([]model.ScorableEnrollment, error) {
	rows, err := l.db.Query(ctx,
		`SELECT e.mass_id, m.mass_date, m.mass_time, e.volunteer_name
		 FROM enrollments e
		 JOIN masses m ON m.id = e.mass_id
		 ORDER BY m.id, e.volunteer_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list scorable enrollments: %w", err)
	}
	defer rows.Close()

	var out []model.ScorableEnrollment
	for rows.Next() {
		var se model.ScorableEnrollment
		if err := rows.Scan(&se.MassID, &se.MassDate, &se.MassTime, &se.VolunteerName); err != nil {
			return nil, fmt.Errorf("scan scorable enrollment: %w", err)
		}
		out = append(out, se)
	}
	return out, rows.Err()
}
