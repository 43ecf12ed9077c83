// Package model defines the core domain types for the acolyte scheduler.
package model

// Volunteer is a registered acolyte identity. Names are globally unique,
// trimmed, and non-empty; past enrollments are keyed by the name string,
// so deleting a volunteer leaves their history intact.
type Volunteer struct {
	Name string `json:"name"`
}

// Mass represents a scheduled mass with a fixed number of seats.
// Date and Time are stored as wall-clock strings ("2006-01-02" / "15:04")
// with no timezone; the scoring engine interprets them in a fixed
// reference zone.
type Mass struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
	Capacity    int    `json:"capacity"`
}

// MassSummary is a Mass annotated with its current enrollment state,
// computed against the ledger at query time.
type MassSummary struct {
	Mass
	FilledSeats int      `json:"filled_seats"`
	Enrolled    []string `json:"enrolled"`
}

// Remaining returns the number of free seats.
func (m *MassSummary) Remaining() int {
	return m.Capacity - m.FilledSeats
}

// IsFull returns true when no seats remain.
func (m *MassSummary) IsFull() bool {
	return m.FilledSeats >= m.Capacity
}

// Enrollment is a claimed seat: one volunteer paired with one mass.
type Enrollment struct {
	ID            string `json:"id"`
	MassID        string `json:"mass_id"`
	VolunteerName string `json:"volunteer_name"`
}

// ScorableEnrollment carries the fields the scoring engine needs for a
// single enrollment: who holds the seat and when the mass takes place.
type ScorableEnrollment struct {
	MassID        string
	MassDate      string
	MassTime      string
	VolunteerName string
}

// LeaderboardEntry is one row of the participation ranking.
type LeaderboardEntry struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// CreateMassRequest is the payload for creating a new mass.
type CreateMassRequest struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,datetime=15:04"`
	Description string `json:"description"`
	// Capacity bounds are enforced by the catalog service, which owns
	// the InvalidCapacity failure.
	Capacity int `json:"capacity"`
}

// RegisterVolunteerRequest is the payload for registering a volunteer.
type RegisterVolunteerRequest struct {
	Name string `json:"name" validate:"required"`
}

// EnrollRequest is the payload for claiming a seat in a mass.
type EnrollRequest struct {
	VolunteerName string `json:"volunteer_name" validate:"required"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
