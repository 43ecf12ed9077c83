package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbarroso/acolyte-scheduler/internal/model"
	"github.com/rbarroso/acolyte-scheduler/internal/store/memory"
)

func referenceZone(t *testing.T) *time.Location {
	t.Helper()
	zone, err := time.LoadLocation(DefaultTimezone)
	require.NoError(t, err)
	return zone
}

func seedMass(t *testing.T, s *memory.Store, id, date, clock string, capacity int) {
	t.Helper()
	require.NoError(t, s.CreateMass(context.Background(), model.Mass{
		ID: id, Date: date, Time: clock, Capacity: capacity,
	}))
}

func TestIsCompleted_GraceWindowBoundary(t *testing.T) {
	zone := referenceZone(t)
	scoring := NewScoring(memory.New(), zone)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"well before start", time.Date(2024, 1, 1, 9, 0, 0, 0, zone), false},
		{"before grace elapses", time.Date(2024, 1, 1, 15, 59, 0, 0, zone), false},
		{"exactly at the boundary", time.Date(2024, 1, 1, 16, 0, 0, 0, zone), false},
		{"after grace elapses", time.Date(2024, 1, 1, 16, 1, 0, 0, zone), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoring.IsCompleted("2024-01-01", "10:00", tt.now))
		})
	}
}

func TestIsCompleted_UsesReferenceZoneNotCallerZone(t *testing.T) {
	zone := referenceZone(t)
	scoring := NewScoring(memory.New(), zone)

	// 16:01 in São Paulo expressed as a UTC instant (UTC-3 on this date).
	now := time.Date(2024, 1, 1, 19, 1, 0, 0, time.UTC)
	assert.True(t, scoring.IsCompleted("2024-01-01", "10:00", now))

	// The same wall-clock reading in UTC is still within the window.
	now = time.Date(2024, 1, 1, 16, 1, 0, 0, time.UTC)
	assert.False(t, scoring.IsCompleted("2024-01-01", "10:00", now))
}

func TestIsCompleted_MalformedScheduleNeverCompletes(t *testing.T) {
	zone := referenceZone(t)
	scoring := NewScoring(memory.New(), zone)
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, zone)

	assert.False(t, scoring.IsCompleted("not-a-date", "10:00", now))
	assert.False(t, scoring.IsCompleted("2024-01-01", "25:99", now))
	assert.False(t, scoring.IsCompleted("", "", now))
}

func TestLeaderboard_CountsCompletedEnrollments(t *testing.T) {
	ctx := context.Background()
	zone := referenceZone(t)
	mem := memory.New()
	scoring := NewScoring(mem, zone)

	seedMass(t, mem, "e1", "2024-01-01", "10:00", 2)
	seedMass(t, mem, "e2", "2024-01-02", "10:00", 2)
	seedMass(t, mem, "future", "2030-01-01", "10:00", 2)

	require.NoError(t, mem.Enroll(ctx, "e1", "Ana"))
	require.NoError(t, mem.Enroll(ctx, "e1", "Beto"))
	require.NoError(t, mem.Enroll(ctx, "e2", "Ana"))
	require.NoError(t, mem.Enroll(ctx, "future", "Beto"))

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, zone)
	board, err := scoring.Leaderboard(ctx, now)
	require.NoError(t, err)

	assert.Equal(t, []model.LeaderboardEntry{
		{Name: "Ana", Points: 2},
		{Name: "Beto", Points: 1},
	}, board)
}

func TestLeaderboard_TiesBreakAlphabetically(t *testing.T) {
	ctx := context.Background()
	zone := referenceZone(t)
	mem := memory.New()
	scoring := NewScoring(mem, zone)

	seedMass(t, mem, "e1", "2024-01-01", "10:00", 3)
	require.NoError(t, mem.Enroll(ctx, "e1", "Zeca"))
	require.NoError(t, mem.Enroll(ctx, "e1", "Ana"))
	require.NoError(t, mem.Enroll(ctx, "e1", "Miro"))

	board, err := scoring.Leaderboard(ctx, time.Date(2024, 6, 1, 0, 0, 0, 0, zone))
	require.NoError(t, err)

	assert.Equal(t, []model.LeaderboardEntry{
		{Name: "Ana", Points: 1},
		{Name: "Miro", Points: 1},
		{Name: "Zeca", Points: 1},
	}, board)
}

func TestLeaderboard_SkipsMalformedSchedules(t *testing.T) {
	ctx := context.Background()
	zone := referenceZone(t)
	mem := memory.New()
	scoring := NewScoring(mem, zone)

	seedMass(t, mem, "good", "2024-01-01", "10:00", 2)
	seedMass(t, mem, "bad", "01/02/2024", "10:00", 2)

	require.NoError(t, mem.Enroll(ctx, "good", "Ana"))
	require.NoError(t, mem.Enroll(ctx, "bad", "Ana"))
	require.NoError(t, mem.Enroll(ctx, "bad", "Beto"))

	board, err := scoring.Leaderboard(ctx, time.Date(2030, 1, 1, 0, 0, 0, 0, zone))
	require.NoError(t, err)

	// One bad record must not corrupt the whole board: the malformed
	// mass simply contributes nothing.
	assert.Equal(t, []model.LeaderboardEntry{{Name: "Ana", Points: 1}}, board)
}

func TestLeaderboard_EmptyLedger(t *testing.T) {
	zone := referenceZone(t)
	scoring := NewScoring(memory.New(), zone)

	board, err := scoring.Leaderboard(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, board)
}
