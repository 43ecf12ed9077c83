package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rbarroso/acolyte-scheduler/internal/model"
	"github.com/rbarroso/acolyte-scheduler/internal/store"
)

// Directory manages volunteer identities. It has no authority over
// ledger state: removing a volunteer leaves their past enrollments in
// place.
type Directory struct {
	store store.Directory
}

// NewDirectory constructs a Directory service.
func NewDirectory(s store.Directory) *Directory {
	return &Directory{store: s}
}

// Register creates a new volunteer identity. The name is trimmed; an
// empty result is rejected and an existing name surfaces
// store.ErrDuplicateName.
func (d *Directory) Register(ctx context.Context, name string) (*model.Volunteer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("volunteer name is required")
	}
	if err := d.store.CreateVolunteer(ctx, name); err != nil {
		return nil, err
	}
	return &model.Volunteer{Name: name}, nil
}

// Remove deletes the identity if present and reports whether a removal
// occurred. Absence is not an error.
func (d *Directory) Remove(ctx context.Context, name string) (bool, error) {
	return d.store.DeleteVolunteer(ctx, strings.TrimSpace(name))
}

// List returns all volunteers sorted by name, ascending.
func (d *Directory) List(ctx context.Context) ([]model.Volunteer, error) {
	return d.store.ListVolunteers(ctx)
}
