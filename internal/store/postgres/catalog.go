package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rbarroso/acolyte-scheduler/internal/model"
	"github.com/rbarroso/acolyte-scheduler/internal/store"
)

// Catalog persists masses and produces enrollment-annotated listings.
type Catalog struct {
	db *pgxpool.Pool
}

// NewCatalog constructs a Catalog.
func NewCatalog(db *pgxpool.Pool) *Catalog {
	return &Catalog{db: db}
}

// CreateMass inserts a new mass.
func (c *Catalog) CreateMass(ctx context.Context, m model.Mass) error {
	_, err := c.db.Exec(ctx,
		`INSERT INTO masses (id, mass_date, mass_time, description, capacity)
		 VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.Date, m.Time, m.Description, m.Capacity,
	)
	if err != nil {
		return fmt.Errorf("insert mass: %w", err)
	}
	return nil
}

// GetMass returns a single mass or ErrNotFound.
func (c *Catalog) GetMass(ctx context.Context, id string) (*model.Mass, error) {
	var m model.Mass
	err := c.db.QueryRow(ctx,
		`SELECT id, mass_date, mass_time, description, capacity
		 FROM masses WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.Date, &m.Time, &m.Description, &m.Capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get mass: %w", err)
	}
	return &m, nil
}

// DeleteMass removes the mass and its enrollments in one transaction.
// The ON DELETE CASCADE foreign key would cover the enrollments on its
// own; the explicit delete keeps the intent visible and the operation
// verifiable regardless of schema drift.
func (c *Catalog) DeleteMass(ctx context.Context, id string) error {
	tx, err := c.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM enrollments WHERE mass_id = $1`, id,
	); err != nil {
		return fmt.Errorf("delete enrollments: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM masses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete mass: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListMassesFrom returns masses with date >= fromDate ordered by
// (date, time) ascending.
func (c *Catalog) ListMassesFrom(ctx context.Context, fromDate string) ([]model.MassSummary, error) {
	return c.list(ctx,
		`SELECT m.id, m.mass_date, m.mass_time, m.description, m.capacity,
		        COUNT(e.id),
		        COALESCE(ARRAY_AGG(e.volunteer_name ORDER BY e.volunteer_name)
		                 FILTER (WHERE e.id IS NOT NULL), '{}')
		 FROM masses m
		 LEFT JOIN enrollments e ON m.id = e.mass_id
		 WHERE m.mass_date >= $1
		 GROUP BY m.id
		 ORDER BY m.mass_date ASC, m.mass_time ASC`,
		fromDate,
	)
}

// ListMasses returns every mass ordered by (date, time) descending.
func (c *Catalog) ListMasses(ctx context.Context) ([]model.MassSummary, error) {
	return c.list(ctx,
		`SELECT m.id, m.mass_date, m.mass_time, m.description, m.capacity,
		        COUNT(e.id),
		        COALESCE(ARRAY_AGG(e.volunteer_name ORDER BY e.volunteer_name)
		                 FILTER (WHERE e.id IS NOT NULL), '{}')
		 FROM masses m
		 LEFT JOIN enrollments e ON m.id = e.mass_id
		 GROUP BY m.id
		 ORDER BY m.mass_date DESC, m.mass_time DESC`,
	)
}

func (c *Catalog) list(ctx context.Context, query string, args ...any) ([]model.MassSummary, error) {
	rows, err := c.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list masses: %w", err)
	}
	defer rows.Close()

	var masses []model.MassSummary
	for rows.Next() {
		var m model.MassSummary
		if err := rows.Scan(
			&m.ID, &m.Date, &m.Time, &m.Description, &m.Capacity,
			&m.FilledSeats, &m.Enrolled,
		); err != nil {
			return nil, fmt.Errorf("scan mass: %w", err)
		}
		masses = append(masses, m)
	}
	return masses, rows.Err()
}
