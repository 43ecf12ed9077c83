package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rbarroso/acolyte-scheduler/internal/model"
	"github.com/rbarroso/acolyte-scheduler/internal/store"
)

// Catalog manages the mass registry. It owns the mass lifecycle,
// including the cascade that removes a deleted mass's enrollments.
type Catalog struct {
	store store.Catalog
	zone  *time.Location
}

// NewCatalog constructs a Catalog service. zone is the reference
// timezone used to resolve "today" for upcoming listings.
func NewCatalog(s store.Catalog, zone *time.Location) *Catalog {
	return &Catalog{store: s, zone: zone}
}

// Create registers a new mass. Capacity below 1 fails with
// ErrInvalidCapacity; date and time must match the wall-clock layouts.
// No temporal constraint is imposed: admin correction flows may create
// masses in the past. "Future only" for self-service creation is the
// caller's rule, not this component's.
func (c *Catalog) Create(ctx context.Context, req model.CreateMassRequest) (*model.Mass, error) {
	if req.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	if _, err := time.Parse(DateLayout, req.Date); err != nil {
		return nil, ErrInvalidSchedule
	}
	if _, err := time.Parse(TimeLayout, req.Time); err != nil {
		return nil, ErrInvalidSchedule
	}

	m := model.Mass{
		ID:          uuid.New().String(),
		Date:        req.Date,
		Time:        req.Time,
		Description: req.Description,
		Capacity:    req.Capacity,
	}
	if err := c.store.CreateMass(ctx, m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Get returns a single mass or store.ErrNotFound.
func (c *Catalog) Get(ctx context.Context, id string) (*model.Mass, error) {
	return c.store.GetMass(ctx, id)
}

// Delete removes the mass and, atomically, every enrollment referencing
// it. Capacity cannot be edited after creation; changing it means
// deleting and recreating the mass, a known limitation of this design.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	return c.store.DeleteMass(ctx, id)
}

// ListUpcoming returns masses dated today or later in the reference
// zone, ordered by (date, time) ascending and annotated with enrollment
// state.
func (c *Catalog) ListUpcoming(ctx context.Context, now time.Time) ([]model.MassSummary, error) {
	today := now.In(c.zone).Format(DateLayout)
	return c.store.ListMassesFrom(ctx, today)
}

// ListAll returns every mass ordered by (date, time) descending,
// annotated with enrollment state.
func (c *Catalog) ListAll(ctx context.Context) ([]model.MassSummary, error) {
	return c.store.ListMasses(ctx)
}

// IsPast reports whether a mass date falls before today in the reference
// zone. Same-day masses are not past, so volunteers can still manage
// their seats on the day itself. A malformed date counts as past, which
// excludes the record from self-service changes.
func (c *Catalog) IsPast(date string, now time.Time) bool {
	if _, ok := tryParseMassTime(date, "00:00", c.zone); !ok {
		return true
	}
	return date < now.In(c.zone).Format(DateLayout)
}
