package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/appointment-service/internal/domain"
	"github.com/spec-kit/appointment-service/internal/scheduling"
)

// countingRepo tracks how many range fetches the dashboard performs.
type countingRepo struct {
	*fakeAppointmentRepo
	rangeCalls int
}

func (c *countingRepo) ListInRange(ctx context.Context, from, to time.Time) ([]domain.Appointment, error) {
	c.rangeCalls++
	return c.fakeAppointmentRepo.ListInRange(ctx, from, to)
}

func seedWeek(t *testing.T, repo *fakeAppointmentRepo) {
	t.Helper()
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	add := func(day int, startHour, minutes int) {
		start := monday.AddDate(0, 0, day).Add(time.Duration(startHour) * time.Hour)
		require.NoError(t, repo.Create(context.Background(), &domain.Appointment{
			Title:     "evento",
			StartTime: start,
			EndTime:   start.Add(time.Duration(minutes) * time.Minute),
			UserID:    "user-1",
		}))
	}
	// Monday: 3 events, 4 hours total. Wednesday: 1 event, 6 hours.
	add(0, 8, 60)
	add(0, 10, 120)
	add(0, 13, 60)
	add(2, 9, 360)
}

func TestGetStatisticsFoldsOneSnapshot(t *testing.T) {
	repo := &countingRepo{fakeAppointmentRepo: newFakeAppointmentRepo()}
	seedWeek(t, repo.fakeAppointmentRepo)

	now := time.Date(2024, 6, 13, 15, 0, 0, 0, time.UTC) // Thursday of that week
	svc := NewDashboardService(repo, scheduling.DefaultLimits(), func() time.Time { return now })

	stats, from, to, err := svc.GetStatistics(context.Background(), nil, nil, nil)
	require.NoError(t, err)

	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	assert.True(t, from.Equal(monday))
	assert.True(t, to.Equal(monday.AddDate(0, 0, 7)))
	assert.Equal(t, 1, repo.rangeCalls, "all metrics must come from a single fetch")

	assert.Equal(t, 4, stats.TotalEvents)
	assert.True(t, stats.BusiestByCount.Date.Equal(monday))
	assert.Equal(t, 3, stats.BusiestByCount.Count)
	wednesday := monday.AddDate(0, 0, 2)
	assert.True(t, stats.BusiestByHours.Date.Equal(wednesday))
	assert.InDelta(t, 6.0, stats.BusiestByHours.Hours, 1e-9)

	require.Len(t, stats.DailyOccupancy, 7)
	assert.InDelta(t, 100.0, stats.DailyOccupancy[2].Percent, 1e-9) // 6h of a 6h capacity
	assert.InDelta(t, 0.0, stats.DailyOccupancy[6].Percent, 1e-9)
}

func TestGetStatisticsExplicitRangeWins(t *testing.T) {
	repo := &countingRepo{fakeAppointmentRepo: newFakeAppointmentRepo()}
	seedWeek(t, repo.fakeAppointmentRepo)

	svc := NewDashboardService(repo, scheduling.DefaultLimits(), func() time.Time {
		return time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	})

	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	stats, from, to, err := svc.GetStatistics(context.Background(), &start, &end, nil)
	require.NoError(t, err)
	assert.True(t, from.Equal(start))
	assert.True(t, to.Equal(end))
	assert.Equal(t, 3, stats.TotalEvents, "only Monday falls inside the explicit range")
}

func TestGetStatisticsRejectsInvertedRange(t *testing.T) {
	repo := &countingRepo{fakeAppointmentRepo: newFakeAppointmentRepo()}
	svc := NewDashboardService(repo, scheduling.DefaultLimits(), nil)

	start := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	_, _, _, err := svc.GetStatistics(context.Background(), &start, &end, nil)
	require.Error(t, err)
	assert.Equal(t, 0, repo.rangeCalls)
}
