package service

import (
	"context"
	"time"

	"github.com/spec-kit/appointment-service/internal/repository"
	"github.com/spec-kit/appointment-service/internal/scheduling"
	apperrors "github.com/spec-kit/appointment-service/pkg/util"
)

// DashboardService computes the range statistics shown on the dashboard.
type DashboardService struct {
	appointments repository.AppointmentRepository
	limits       scheduling.Limits
	now          func() time.Time
}

// NewDashboardService constructs the service.
func NewDashboardService(appointments repository.AppointmentRepository, limits scheduling.Limits, now func() time.Time) *DashboardService {
	if now == nil {
		now = time.Now
	}
	return &DashboardService{appointments: appointments, limits: limits, now: now}
}

// GetStatistics resolves the requested window (defaulting to the current
// Monday-start week) and folds all four metrics from a single range fetch,
// so the figures always describe one consistent snapshot.
// The resolved window is returned alongside the stats so callers can echo
// it back.
func (s *DashboardService) GetStatistics(ctx context.Context, start, end, weekStart *time.Time) (*scheduling.Stats, time.Time, time.Time, error) {
	from, to := scheduling.ResolveRange(start, end, weekStart, s.now())
	if !to.After(from) {
		return nil, from, to, apperrors.NewValidationError("endDate must be after startDate", nil)
	}

	appointments, err := s.appointments.ListInRange(ctx, from, to)
	if err != nil {
		return nil, from, to, apperrors.MapError(err)
	}

	stats := scheduling.Aggregate(s.limits, from, to, appointments)
	return &stats, from, to, nil
}
