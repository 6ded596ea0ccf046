package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/appointment-service/internal/domain"
	"github.com/spec-kit/appointment-service/internal/events"
	"github.com/spec-kit/appointment-service/internal/locking"
	"github.com/spec-kit/appointment-service/internal/observability"
	"github.com/spec-kit/appointment-service/internal/repository"
	"github.com/spec-kit/appointment-service/internal/scheduling"
	apperrors "github.com/spec-kit/appointment-service/pkg/util"
)

// fakeAppointmentRepo keeps appointments in memory behind the repository
// interface. Same-day filtering mirrors the SQL: start date match, not
// cancelled, id excluded.
type fakeAppointmentRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]domain.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{nextID: 1, items: make(map[int64]domain.Appointment)}
}

func (f *fakeAppointmentRepo) Create(_ context.Context, a *domain.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = f.nextID
	f.nextID++
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	f.items[a.ID] = *a
	return nil
}

func (f *fakeAppointmentRepo) Update(_ context.Context, a *domain.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	a.UpdatedAt = time.Now()
	f.items[a.ID] = *a
	return nil
}

func (f *fakeAppointmentRepo) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := a
	return &copied, nil
}

func (f *fakeAppointmentRepo) ListSameDay(_ context.Context, userID string, day time.Time, excludeID int64) ([]domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	date := domain.DateOnly(day)
	var out []domain.Appointment
	for _, a := range f.items {
		if a.UserID != userID || a.ID == excludeID || a.IsCancelled.Bool() {
			continue
		}
		if a.Day().Equal(date) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListInRange(_ context.Context, from, to time.Time) ([]domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Appointment
	for _, a := range f.items {
		if !a.StartTime.Before(from) && a.StartTime.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListWithFilter(_ context.Context, filter repository.AppointmentFilter) ([]domain.Appointment, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Appointment
	for _, a := range f.items {
		if filter.UserID != nil && a.UserID != *filter.UserID {
			continue
		}
		if filter.From != nil && a.StartTime.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !a.StartTime.Before(*filter.To) {
			continue
		}
		out = append(out, a)
	}
	return out, len(out), nil
}

func (f *fakeAppointmentRepo) ListReminderDue(_ context.Context, now time.Time, lead time.Duration) ([]domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Appointment
	for _, a := range f.items {
		if !a.SendReminder.Bool() || a.ReminderSentAt != nil || a.IsCancelled.Bool() {
			continue
		}
		if !a.StartTime.Before(now) && a.StartTime.Before(now.Add(lead)) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) MarkReminderSent(_ context.Context, id int64, sentAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if a.ReminderSentAt == nil {
		a.ReminderSentAt = &sentAt
		f.items[id] = a
	}
	return nil
}

func newTestService(repo *fakeAppointmentRepo) *AppointmentService {
	return NewAppointmentService(AppointmentDependencies{
		AppointmentRepo: repo,
		DayLocker:       locking.NewMemoryDayLocker(),
		Limits:          scheduling.DefaultLimits(),
		Dispatcher:      events.NewInMemoryDispatcher(),
	})
}

var (
	owner = Actor{ID: "user-1", Name: "Ana"}
	other = Actor{ID: "user-2", Name: "Ben"}
	admin = Actor{ID: "admin-1", Name: "Root", IsAdmin: true}
)

func createInput(start, end time.Time) AppointmentCreateInput {
	return AppointmentCreateInput{Title: "Reunión", StartTime: start, EndTime: end}
}

func mustCreate(t *testing.T, svc *AppointmentService, actor Actor, start, end time.Time) *domain.Appointment {
	t.Helper()
	a, err := svc.Create(context.Background(), actor, createInput(start, end))
	require.NoError(t, err)
	return a
}

func hour(h int) time.Time {
	return time.Date(2024, 6, 10, h, 0, 0, 0, time.UTC)
}

func TestCreateStoresFullTimestamps(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo)

	start := time.Date(2024, 6, 10, 9, 30, 15, 0, time.UTC)
	end := time.Date(2024, 6, 10, 10, 45, 0, 0, time.UTC)
	a := mustCreate(t, svc, owner, start, end)

	stored, err := repo.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, stored.StartTime.Equal(start), "start time must not be truncated to the date")
	assert.True(t, stored.EndTime.Equal(end))
	assert.Equal(t, domain.No, stored.IsCancelled)
	assert.Equal(t, owner.ID, stored.CreatedBy)
}

func TestCreateRejectsSixthEvent(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo)

	for i := 0; i < 5; i++ {
		mustCreate(t, svc, owner, hour(8+2*i), hour(8+2*i).Add(30*time.Minute))
	}

	_, err := svc.Create(context.Background(), owner, createInput(hour(19), hour(19).Add(10*time.Minute)))
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, apperrors.CodeValidationFailed, domainErr.Code)
	assert.Equal(t, "No se pueden crear más de 5 eventos por día.", domainErr.Message)
}

func TestCreateRejectsOverDailyHours(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo)

	mustCreate(t, svc, owner, hour(8), hour(13)) // 5 hours

	_, err := svc.Create(context.Background(), owner, createInput(hour(14), hour(16)))
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "No se pueden superar las 6 horas de eventos por día.", domainErr.Message)
}

func TestCreateRejectsOverlap(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo)

	mustCreate(t, svc, owner, hour(9), hour(10))

	_, err := svc.Create(context.Background(), owner, createInput(hour(9).Add(30*time.Minute), hour(10).Add(30*time.Minute)))
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "No puede haber superposición horaria con otros eventos.", domainErr.Message)
}

func TestQuotaIsPerUser(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo)

	mustCreate(t, svc, owner, hour(9), hour(10))
	// An identical slot for another user does not collide.
	mustCreate(t, svc, other, hour(9), hour(10))
}

func TestUpdateRunsRulesAgainstOtherAppointments(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo)

	first := mustCreate(t, svc, owner, hour(9), hour(10))
	second := mustCreate(t, svc, owner, hour(11), hour(12))

	// Moving the second onto the first must hit the overlap rule.
	_, err := svc.Update(context.Background(), owner, second.ID, AppointmentUpdateInput{
		Title:     "Reunión",
		StartTime: hour(9).Add(15 * time.Minute),
		EndTime:   hour(10).Add(15 * time.Minute),
	})
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "No puede haber superposición horaria con otros eventos.", domainErr.Message)

	// A record never overlaps itself: re-saving the first in place is fine.
	_, err = svc.Update(context.Background(), owner, first.ID, AppointmentUpdateInput{
		Title:     "Reunión",
		StartTime: hour(9),
		EndTime:   hour(10),
	})
	require.NoError(t, err)
}

func TestUpdateCancellationBypassesRules(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo)

	// Fill the day completely, then cancel one of the appointments. The
	// cancellation carries a window that would violate every rule if
	// validated.
	var last *domain.Appointment
	for i := 0; i < 5; i++ {
		last = mustCreate(t, svc, owner, hour(8+2*i), hour(8+2*i).Add(time.Hour))
	}

	reason := "client no-show"
	updated, err := svc.Update(context.Background(), owner, last.ID, AppointmentUpdateInput{
		Title:              "Cancelled meeting",
		Description:        "rescheduling later",
		StartTime:          hour(8),
		EndTime:            hour(20),
		IsCancelled:        true,
		CancellationReason: &reason,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Yes, updated.IsCancelled)
	assert.Equal(t, &reason, updated.CancellationReason)
	assert.Equal(t, "Cancelled meeting", updated.Title)

	// The cancelled slot no longer occupies quota.
	stored, err := repo.GetByID(context.Background(), last.ID)
	require.NoError(t, err)
	assert.True(t, stored.StartTime.Equal(hour(16)), "cancellation must not touch the schedule window")

	_, err = svc.Create(context.Background(), owner, createInput(hour(16), hour(17)))
	require.NoError(t, err)
}

func TestUpdateClearsCancellationReason(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo)

	a := mustCreate(t, svc, owner, hour(9), hour(10))
	reason := "sick"
	_, err := svc.Cancel(context.Background(), owner, a.ID, &reason)
	require.NoError(t, err)

	restored, err := svc.Update(context.Background(), owner, a.ID, AppointmentUpdateInput{
		Title:     "Reunión",
		StartTime: hour(9),
		EndTime:   hour(10),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.No, restored.IsCancelled)
	assert.Nil(t, restored.CancellationReason)
}

func TestCancelIsIdempotent(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo)

	a := mustCreate(t, svc, owner, hour(9), hour(10))
	reason := "first"
	_, err := svc.Cancel(context.Background(), owner, a.ID, &reason)
	require.NoError(t, err)

	second := "second"
	cancelled, err := svc.Cancel(context.Background(), owner, a.ID, &second)
	require.NoError(t, err)
	assert.Equal(t, domain.Yes, cancelled.IsCancelled)
	assert.Equal(t, "first", *cancelled.CancellationReason)
}

func TestGetHidesOtherUsersRecords(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo)

	a := mustCreate(t, svc, owner, hour(9), hour(10))

	_, err := svc.Get(context.Background(), other, a.ID)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, apperrors.CodeNotFound, domainErr.Code)

	_, err = svc.Get(context.Background(), other, 9999)
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, apperrors.CodeNotFound, domainErr.Code, "missing and foreign records must be indistinguishable")

	got, err := svc.Get(context.Background(), admin, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
}

func TestMutationByNonOwnerIsForbidden(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo)

	a := mustCreate(t, svc, owner, hour(9), hour(10))

	_, err := svc.Update(context.Background(), other, a.ID, AppointmentUpdateInput{
		Title:     "hijack",
		StartTime: hour(11),
		EndTime:   hour(12),
	})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, apperrors.CodeForbidden, domainErr.Code)

	_, err = svc.Update(context.Background(), admin, a.ID, AppointmentUpdateInput{
		Title:     "Reunión",
		StartTime: hour(11),
		EndTime:   hour(12),
	})
	require.NoError(t, err)
}

func TestListScopesNonAdminsToOwnRecords(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo)

	mustCreate(t, svc, owner, hour(9), hour(10))
	mustCreate(t, svc, other, hour(11), hour(12))

	otherID := other.ID
	items, total, err := svc.List(context.Background(), owner, AppointmentListFilter{UserID: &otherID})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, owner.ID, items[0].UserID, "requested user filter must be ignored for non-admins")

	items, total, err = svc.List(context.Background(), admin, AppointmentListFilter{UserID: &otherID})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, other.ID, items[0].UserID)
}

func TestRuleRejectionsAreCounted(t *testing.T) {
	repo := newFakeAppointmentRepo()
	metrics := observability.NewMetrics()
	svc := NewAppointmentService(AppointmentDependencies{
		AppointmentRepo: repo,
		DayLocker:       locking.NewMemoryDayLocker(),
		Limits:          scheduling.DefaultLimits(),
		Dispatcher:      events.NewInMemoryDispatcher(),
		Metrics:         metrics,
	})

	for i := 0; i < 5; i++ {
		mustCreate(t, svc, owner, hour(8+i), hour(8+i).Add(30*time.Minute))
	}
	_, err := svc.Create(context.Background(), owner, createInput(hour(14), hour(15)))
	require.Error(t, err)

	snap := metrics.CurrentSnapshot()
	assert.Equal(t, int64(1), snap.RuleRejections[string(scheduling.RuleMaxEvents)])
}

func TestListRangeUpperBoundIsExclusive(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo)

	mustCreate(t, svc, owner, hour(9), hour(10))
	mustCreate(t, svc, owner, hour(11), hour(12))

	from, to := hour(9), hour(11)
	items, total, err := svc.List(context.Background(), owner, AppointmentListFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, hour(9), items[0].StartTime, "appointment starting exactly at the upper bound must be excluded")
}

func TestCreateValidatesWindow(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), owner, AppointmentCreateInput{
		Title:     "",
		StartTime: hour(10),
		EndTime:   hour(9),
	})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, apperrors.CodeValidationFailed, domainErr.Code)
	assert.Contains(t, domainErr.Details, "title")
	assert.Contains(t, domainErr.Details, "time")
}

func TestConcurrentCreatesRespectQuota(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo)

	// Leave room for exactly one more event today.
	for i := 0; i < 4; i++ {
		mustCreate(t, svc, owner, hour(8+2*i), hour(8+2*i).Add(15*time.Minute))
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	starts := []time.Time{hour(17), hour(18)}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Create(context.Background(), owner, createInput(starts[i], starts[i].Add(15*time.Minute)))
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range results {
		if err != nil {
			var domainErr *apperrors.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "No se pueden crear más de 5 eventos por día.", domainErr.Message)
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one of the racing creates must be rejected")
}

func TestRepositoryErrorSurfacesAsDomainError(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo)

	_, err := svc.Update(context.Background(), owner, 404, AppointmentUpdateInput{
		Title:     "Reunión",
		StartTime: hour(9),
		EndTime:   hour(10),
	})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, apperrors.CodeNotFound, domainErr.Code)
	assert.False(t, errors.Is(err, pgx.ErrNoRows), "driver sentinel must not leak to callers")
}
