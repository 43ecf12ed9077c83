package service

import (
	"context"
	"sort"
	"time"

	"github.com/rbarroso/acolyte-scheduler/internal/model"
	"github.com/rbarroso/acolyte-scheduler/internal/store"
)

// GraceWindow is how long after a mass's scheduled start its
// enrollments become eligible for scoring.
const GraceWindow = 6 * time.Hour

// Scoring derives the participation leaderboard from catalog and ledger
// state. All schedule interpretation happens in the reference zone.
type Scoring struct {
	ledger store.Ledger
	zone   *time.Location
}

// NewScoring constructs a Scoring engine.
func NewScoring(ledger store.Ledger, zone *time.Location) *Scoring {
	return &Scoring{ledger: ledger, zone: zone}
}

// IsCompleted reports whether the mass's start plus the grace window has
// elapsed. The boundary is exclusive: at exactly start+6h the mass is
// not yet completed. Malformed schedules are never completed, which
// keeps their enrollments out of scoring.
func (s *Scoring) IsCompleted(date, clock string, now time.Time) bool {
	start, ok := tryParseMassTime(date, clock, s.zone)
	if !ok {
		return false
	}
	return now.After(start.Add(GraceWindow))
}

// Leaderboard tallies one point per enrollment on a completed mass and
// returns the ranking ordered by points descending, ties broken by name
// ascending. The alphabetical tie-break is deliberate: the historical
// behavior depended on incidental scan order, which is not worth
// preserving.
func (s *Scoring) Leaderboard(ctx context.Context, now time.Time) ([]model.LeaderboardEntry, error) {
	enrollments, err := s.ledger.ListScorable(ctx)
	if err != nil {
		return nil, err
	}

	points := make(map[string]int)
	for _, e := range enrollments {
		if s.IsCompleted(e.MassDate, e.MassTime, now) {
			points[e.VolunteerName]++
		}
	}

	board := make([]model.LeaderboardEntry, 0, len(points))
	for name, p := range points {
		board = append(board, model.LeaderboardEntry{Name: name, Points: p})
	}
	sort.Slice(board, func(i, j int) bool {
		if board[i].Points != board[j].Points {
			return board[i].Points > board[j].Points
		}
		return board[i].Name < board[j].Name
	})
	return board, nil
}
