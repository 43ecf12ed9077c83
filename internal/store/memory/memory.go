// Package memory implements the store interfaces over mutex-guarded maps.
// It backs the test suite and database-less local runs. The enroll path
// holds the write lock across the capacity check, the duplicate check,
// and the insert, which serializes racing enrollments per process.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/rbarroso/acolyte-scheduler/internal/model"
	"github.com/rbarroso/acolyte-scheduler/internal/store"
)

type enrollmentKey struct {
	massID string
	name   string
}

// Store holds all three relations behind a single RWMutex.
type Store struct {
	mu          sync.RWMutex
	volunteers  map[string]struct{}
	masses      map[string]model.Mass
	enrollments map[enrollmentKey]model.Enrollment
	massOrder   []string // creation order, stable iteration for scoring scans
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		volunteers:  make(map[string]struct{}),
		masses:      make(map[string]model.Mass),
		enrollments: make(map[enrollmentKey]model.Enrollment),
	}
}

// ─── Directory ────────────────────────────────────────────────────────────────

// CreateVolunteer stores a new identity or returns ErrDuplicateName.
func (s *Store) CreateVolunteer(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.volunteers[name]; ok {
		return store.ErrDuplicateName
	}
	s.volunteers[name] = struct{}{}
	return nil
}

// DeleteVolunteer removes the identity if present. Enrollments keyed by
// the name remain untouched; they are historical records.
func (s *Store) DeleteVolunteer(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.volunteers[name]; !ok {
		return false, nil
	}
	delete(s.volunteers, name)
	return true, nil
}

// ListVolunteers returns all volunteers sorted by name ascending.
func (s *Store) ListVolunteers(_ context.Context) ([]model.Volunteer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Volunteer, 0, len(s.volunteers))
	for name := range s.volunteers {
		out = append(out, model.Volunteer{Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ─── Catalog ──────────────────────────────────────────────────────────────────

// CreateMass stores a new mass.
func (s *Store) CreateMass(_ context.Context, m model.Mass) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.masses[m.ID] = m
	s.massOrder = append(s.massOrder, m.ID)
	return nil
}

// GetMass returns a single mass or ErrNotFound.
func (s *Store) GetMass(_ context.Context, id string) (*model.Mass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.masses[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &m, nil
}

// DeleteMass removes the mass and all of its enrollments in one critical
// section, so no caller can observe the partial state.
func (s *Store) DeleteMass(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.masses[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.masses, id)
	for i, mid := range s.massOrder {
		if mid == id {
			s.massOrder = append(s.massOrder[:i], s.massOrder[i+1:]...)
			break
		}
	}
	for key := range s.enrollments {
		if key.massID == id {
			delete(s.enrollments, key)
		}
	}
	return nil
}

// ListMassesFrom returns masses with date >= fromDate ordered by
// (date, time) ascending, annotated with enrollment state.
func (s *Store) ListMassesFrom(_ context.Context, fromDate string) ([]model.MassSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.MassSummary
	for _, m := range s.masses {
		if m.Date >= fromDate {
			out = append(out, s.summarizeLocked(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

// ListMasses returns every mass ordered by (date, time) descending,
// annotated with enrollment state.
func (s *Store) ListMasses(_ context.Context) ([]model.MassSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.MassSummary, 0, len(s.masses))
	for _, m := range s.masses {
		out = append(out, s.summarizeLocked(m))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Time > out[j].Time
	})
	return out, nil
}

// summarizeLocked annotates a mass; the caller must hold at least a read lock.
func (s *Store) summarizeLocked(m model.Mass) model.MassSummary {
	names := s.enrolledNamesLocked(m.ID)
	return model.MassSummary{Mass: m, FilledSeats: len(names), Enrolled: names}
}

func (s *Store) enrolledNamesLocked(massID string) []string {
	names := []string{}
	for key := range s.enrollments {
		if key.massID == massID {
			names = append(names, key.name)
		}
	}
	sort.Strings(names)
	return names
}

// ─── Ledger ───────────────────────────────────────────────────────────────────

// IsEnrolled reports whether the pair exists.
func (s *Store) IsEnrolled(_ context.Context, massID, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.enrollments[enrollmentKey{massID, name}]
	return ok, nil
}

// Enroll inserts the pair under the write lock, so the existence check,
// the capacity check, the duplicate check, and the insert all see the
// same snapshot.
func (s *Store) Enroll(_ context.Context, massID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.masses[massID]
	if !ok {
		return store.ErrNotFound
	}
	if _, ok := s.enrollments[enrollmentKey{massID, name}]; ok {
		return store.ErrAlreadyEnrolled
	}
	filled := 0
	for key := range s.enrollments {
		if key.massID == massID {
			filled++
		}
	}
	if filled >= m.Capacity {
		return store.ErrMassFull
	}
	s.enrollments[enrollmentKey{massID, name}] = model.Enrollment{
		ID:            uuid.New().String(),
		MassID:        massID,
		VolunteerName: name,
	}
	return nil
}

// Withdraw removes the pair if present.
func (s *Store) Withdraw(_ context.Context, massID, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := enrollmentKey{massID, name}
	if _, ok := s.enrollments[key]; !ok {
		return false, nil
	}
	delete(s.enrollments, key)
	return true, nil
}

// ListEnrolled returns enrolled names for a mass, ascending. An unknown
// mass yields an empty list.
func (s *Store) ListEnrolled(_ context.Context, massID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.enrolledNamesLocked(massID), nil
}

// ListScorable returns every enrollment joined with its mass's schedule,
// in mass creation order with names ascending within a mass.
func (s *Store) ListScorable(_ context.Context) ([]model.ScorableEnrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.ScorableEnrollment
	for _, massID := range s.massOrder {
		m := s.masses[massID]
		for _, name := range s.enrolledNamesLocked(massID) {
			out = append(out, model.ScorableEnrollment{
				MassID:        massID,
				MassDate:      m.Date,
				MassTime:      m.Time,
				VolunteerName: name,
			})
		}
	}
	return out, nil
}
