package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/appointment-service/internal/events"
	"github.com/spec-kit/appointment-service/internal/observability"
	"github.com/spec-kit/appointment-service/internal/repository"
)

// ReminderService finds appointments whose start time falls within the
// configured lead window and marks them reminded exactly once. The actual
// delivery happens in the notification handlers subscribed to the
// reminder_sent event.
type ReminderService struct {
	appointments repository.AppointmentRepository
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	metrics      *observability.Metrics
	lead         time.Duration
	now          func() time.Time
}

// NewReminderService creates the service.
func NewReminderService(appointments repository.AppointmentRepository, dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics, lead time.Duration) *ReminderService {
	return &ReminderService{
		appointments: appointments,
		dispatcher:   dispatcher,
		logger:       logger,
		metrics:      metrics,
		lead:         lead,
		now:          time.Now,
	}
}

// DispatchDue processes one reminder sweep and returns how many reminders
// were sent. A per-appointment failure is logged and skipped so one bad row
// cannot stall the rest of the batch.
func (s *ReminderService) DispatchDue(ctx context.Context) (int, error) {
	now := s.now().UTC()

	due, err := s.appointments.ListReminderDue(ctx, now, s.lead)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, appointment := range due {
		if err := s.appointments.MarkReminderSent(ctx, appointment.ID, now); err != nil {
			s.logger.Error("failed to mark reminder sent",
				zap.Int64("appointment_id", appointment.ID),
				zap.Error(err))
			continue
		}

		event := events.Event{
			ID:            uuid.NewString(),
			Type:          events.EventReminderSent,
			AppointmentID: appointment.ID,
			Actor:         events.Actor{Name: "reminder-worker"},
			Timestamp:     now,
			Payload: events.ReminderSentPayload{
				Title:     appointment.Title,
				OwnerID:   appointment.UserID,
				StartTime: appointment.StartTime,
				SentAt:    now,
			},
		}
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish reminder event",
				zap.Int64("appointment_id", appointment.ID),
				zap.Error(err))
		}
		sent++
	}
	s.metrics.RecordReminderDispatch(sent)
	return sent, nil
}
