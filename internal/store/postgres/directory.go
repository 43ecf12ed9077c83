package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rbarroso/acolyte-scheduler/internal/model"
	"github.com/rbarroso/acolyte-scheduler/internal/store"
)

// Directory persists volunteer identities in the volunteers relation.
type Directory struct {
	db *pgxpool.Pool
}

// NewDirectory constructs a Directory.
func NewDirectory(db *pgxpool.Pool) *Directory {
	return &Directory{db: db}
}

// CreateVolunteer inserts a new identity. The primary key on name turns a
// duplicate insert into ErrDuplicateName.
func (d *Directory) CreateVolunteer(ctx context.Context, name string) error {
	_, err := d.db.Exec(ctx,
		`INSERT INTO volunteers (name) VALUES ($1)`,
		name,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicateName
		}
		return fmt.Errorf("insert volunteer: %w", err)
	}
	return nil
}

// DeleteVolunteer removes the identity if present. Past enrollments stay,
// keyed by the name string.
func (d *Directory) DeleteVolunteer(ctx context.Context, name string) (bool, error) {
	tag, err := d.db.Exec(ctx,
		`DELETE FROM volunteers WHERE name = $1`,
		name,
	)
	if err != nil {
		return false, fmt.Errorf("delete volunteer: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListVolunteers returns all volunteers ordered by name ascending.
func (d *Directory) ListVolunteers(ctx context.Context) ([]model.Volunteer, error) {
	rows, err := d.db.Query(ctx,
		`SELECT name FROM volunteers ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list volunteers: %w", err)
	}
	defer rows.Close()

	var volunteers []model.Volunteer
	for rows.Next() {
		var v model.Volunteer
		if err := rows.Scan(&v.Name); err != nil {
			return nil, fmt.Errorf("scan volunteer: %w", err)
		}
		volunteers = append(volunteers, v)
	}
	return volunteers, rows.Err()
}
