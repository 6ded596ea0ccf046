package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/appointment-service/internal/domain"
	"github.com/spec-kit/appointment-service/internal/events"
	"github.com/spec-kit/appointment-service/internal/locking"
	"github.com/spec-kit/appointment-service/internal/observability"
	"github.com/spec-kit/appointment-service/internal/repository"
	"github.com/spec-kit/appointment-service/internal/scheduling"
	apperrors "github.com/spec-kit/appointment-service/pkg/util"
)

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	ID      string
	Name    string
	IsAdmin bool
	IP      string
}

// AppointmentService coordinates appointment workflows: the owner-or-admin
// policy gate, same-day quota validation under a per-(user, day) lock, and
// event publication on successful writes.
type AppointmentService struct {
	appointments repository.AppointmentRepository
	locks        locking.DayLocker
	limits       scheduling.Limits
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	now          func() time.Time
}

// AppointmentDependencies bundles collaborators for the service.
type AppointmentDependencies struct {
	AppointmentRepo repository.AppointmentRepository
	DayLocker       locking.DayLocker
	Limits          scheduling.Limits
	Dispatcher      events.Dispatcher
	Metrics         *observability.Metrics
	Now             func() time.Time
}

// AppointmentCreateInput describes the creation payload.
type AppointmentCreateInput struct {
	Title        string
	Description  string
	StartTime    time.Time
	EndTime      time.Time
	Location     *string
	MeetingLink  *string
	IsConfirmed  bool
	SendReminder bool
}

// AppointmentUpdateInput describes the full-replacement update payload.
// Setting IsCancelled applies only the cancellation fields; everything
// else on the record is left untouched.
type AppointmentUpdateInput struct {
	Title              string
	Description        string
	StartTime          time.Time
	EndTime            time.Time
	Location           *string
	MeetingLink        *string
	IsConfirmed        bool
	IsCancelled        bool
	CancellationReason *string
	SendReminder       bool
}

// AppointmentListFilter describes listing parameters. UserID is honored
// for administrators only; regular callers always see their own records.
type AppointmentListFilter struct {
	UserID        *string
	From          *time.Time
	To            *time.Time
	Year          *int
	Month         *int
	WeekStart     *time.Time
	OnlyConfirmed bool
	OnlyCancelled bool
	Limit         int
	Offset        int
}

// NewAppointmentService constructs the service.
func NewAppointmentService(deps AppointmentDependencies) *AppointmentService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &AppointmentService{
		appointments: deps.AppointmentRepo,
		locks:        deps.DayLocker,
		limits:       deps.Limits,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		now:          now,
	}
}

// Create validates a proposed appointment against the owner's same-day set
// and persists it. Start and end timestamps are stored as submitted; the
// calendar date used for quota grouping is derived from the start time.
func (s *AppointmentService) Create(ctx context.Context, actor Actor, input AppointmentCreateInput) (*domain.Appointment, error) {
	if err := validateWindow(input.Title, input.StartTime, input.EndTime); err != nil {
		return nil, err
	}

	release, err := s.locks.Acquire(ctx, actor.ID, input.StartTime)
	if err != nil {
		return nil, apperrors.NewConflict("could not reserve the requested day, retry", nil)
	}
	defer release()

	sameDay, err := s.appointments.ListSameDay(ctx, actor.ID, input.StartTime, 0)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if v := scheduling.Validate(s.limits, scheduling.Proposal{Start: input.StartTime, End: input.EndTime}, sameDay); v != nil {
		s.metrics.RecordRuleRejection(string(v.Rule))
		return nil, apperrors.NewRuleViolation(string(v.Rule), v.Message)
	}

	appointment := &domain.Appointment{
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		Location:     input.Location,
		MeetingLink:  input.MeetingLink,
		UserID:       actor.ID,
		IsConfirmed:  domain.YesNoFromBool(input.IsConfirmed),
		IsCancelled:  domain.No,
		SendReminder: domain.YesNoFromBool(input.SendReminder),
		CreatedBy:    actor.ID,
		UpdatedBy:    actor.ID,
	}

	if err := s.appointments.Create(ctx, appointment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:          events.EventAppointmentCreated,
		AppointmentID: appointment.ID,
		Actor:         eventActor(actor),
		Payload: events.AppointmentCreatedPayload{
			Title:     appointment.Title,
			StartTime: appointment.StartTime,
			EndTime:   appointment.EndTime,
			OwnerID:   appointment.UserID,
		},
	})
	return appointment, nil
}

// Update replaces an appointment after re-running the same-day rules, or
// applies a cancellation. Only the owner or an administrator may update.
func (s *AppointmentService) Update(ctx context.Context, actor Actor, id int64, input AppointmentUpdateInput) (*domain.Appointment, error) {
	appointment, err := s.getForMutation(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.IsCancelled {
		return s.cancel(ctx, actor, appointment, input.Title, input.Description, input.IsConfirmed, input.CancellationReason)
	}

	if err := validateWindow(input.Title, input.StartTime, input.EndTime); err != nil {
		return nil, err
	}

	release, err := s.locks.Acquire(ctx, appointment.UserID, input.StartTime)
	if err != nil {
		return nil, apperrors.NewConflict("could not reserve the requested day, retry", nil)
	}
	defer release()

	sameDay, err := s.appointments.ListSameDay(ctx, appointment.UserID, input.StartTime, appointment.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if v := scheduling.Validate(s.limits, scheduling.Proposal{Start: input.StartTime, End: input.EndTime}, sameDay); v != nil {
		s.metrics.RecordRuleRejection(string(v.Rule))
		return nil, apperrors.NewRuleViolation(string(v.Rule), v.Message)
	}

	appointment.Title = strings.TrimSpace(input.Title)
	appointment.Description = strings.TrimSpace(input.Description)
	appointment.StartTime = input.StartTime
	appointment.EndTime = input.EndTime
	appointment.Location = input.Location
	appointment.MeetingLink = input.MeetingLink
	appointment.IsConfirmed = domain.YesNoFromBool(input.IsConfirmed)
	appointment.IsCancelled = domain.No
	appointment.CancellationReason = nil
	appointment.SendReminder = domain.YesNoFromBool(input.SendReminder)
	appointment.UpdatedBy = actor.ID

	if err := s.appointments.Update(ctx, appointment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:          events.EventAppointmentUpdated,
		AppointmentID: appointment.ID,
		Actor:         eventActor(actor),
		Payload: events.AppointmentUpdatedPayload{
			Title:     appointment.Title,
			StartTime: appointment.StartTime,
			EndTime:   appointment.EndTime,
			Confirmed: appointment.IsConfirmed.Bool(),
		},
	})
	return appointment, nil
}

// Cancel marks an appointment cancelled with an optional reason. It backs
// the delete endpoint: records are never physically removed.
func (s *AppointmentService) Cancel(ctx context.Context, actor Actor, id int64, reason *string) (*domain.Appointment, error) {
	appointment, err := s.getForMutation(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, actor, appointment, appointment.Title, appointment.Description, appointment.IsConfirmed.Bool(), reason)
}

// cancel applies the cancellation fields and skips every scheduling rule:
// a cancelled appointment no longer occupies quota, so there is nothing to
// check. Cancelling twice is a no-op.
func (s *AppointmentService) cancel(ctx context.Context, actor Actor, appointment *domain.Appointment, title, description string, confirmed bool, reason *string) (*domain.Appointment, error) {
	if appointment.IsCancelled.Bool() {
		return appointment, nil
	}

	appointment.Title = strings.TrimSpace(title)
	appointment.Description = strings.TrimSpace(description)
	appointment.IsConfirmed = domain.YesNoFromBool(confirmed)
	appointment.IsCancelled = domain.Yes
	appointment.CancellationReason = reason
	appointment.UpdatedBy = actor.ID

	if err := s.appointments.Update(ctx, appointment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:          events.EventAppointmentCancelled,
		AppointmentID: appointment.ID,
		Actor:         eventActor(actor),
		Payload: events.AppointmentCancelledPayload{
			Title:  appointment.Title,
			Reason: appointment.CancellationReason,
		},
	})
	return appointment, nil
}

// Get fetches one appointment. A record that exists but belongs to someone
// else reads the same as a missing one, so ids cannot be probed.
func (s *AppointmentService) Get(ctx context.Context, actor Actor, id int64) (*domain.Appointment, error) {
	appointment, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("appointment", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if !actor.IsAdmin && appointment.UserID != actor.ID {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	return appointment, nil
}

// List returns a page of appointments. Non-admin callers are always scoped
// to their own records regardless of the requested filter.
func (s *AppointmentService) List(ctx context.Context, actor Actor, filter AppointmentListFilter) ([]domain.Appointment, int, error) {
	repoFilter := repository.AppointmentFilter{
		UserID:        filter.UserID,
		From:          filter.From,
		To:            filter.To,
		Year:          filter.Year,
		Month:         filter.Month,
		WeekStart:     filter.WeekStart,
		OnlyConfirmed: filter.OnlyConfirmed,
		OnlyCancelled: filter.OnlyCancelled,
		Limit:         filter.Limit,
		Offset:        filter.Offset,
	}
	if !actor.IsAdmin {
		ownID := actor.ID
		repoFilter.UserID = &ownID
	}

	items, total, err := s.appointments.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return items, total, nil
}

// getForMutation loads an appointment and applies the owner-or-admin gate.
// Unlike reads, a denied mutation reports Forbidden: the caller already
// proved the id exists by owning a reference to it.
func (s *AppointmentService) getForMutation(ctx context.Context, actor Actor, id int64) (*domain.Appointment, error) {
	appointment, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("appointment", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if !actor.IsAdmin && appointment.UserID != actor.ID {
		return nil, apperrors.NewForbidden("you don't have permission to modify this appointment")
	}
	return appointment, nil
}

func validateWindow(title string, start, end time.Time) error {
	details := map[string]any{}
	if strings.TrimSpace(title) == "" {
		details["title"] = "required"
	}
	if start.IsZero() || end.IsZero() {
		details["time"] = "start_time and end_time are required"
	} else if !end.After(start) {
		details["time"] = "end_time must be after start_time"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid appointment", details)
	}
	return nil
}

func (s *AppointmentService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func eventActor(actor Actor) events.Actor {
	role := domain.RoleUser
	if actor.IsAdmin {
		role = domain.RoleAdmin
	}
	return events.Actor{
		UserID: actor.ID,
		Name:   actor.Name,
		Role:   role,
		IP:     actor.IP,
	}
}
