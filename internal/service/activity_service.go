package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/appointment-service/internal/domain"
	"github.com/spec-kit/appointment-service/internal/events"
	"github.com/spec-kit/appointment-service/internal/repository"
	apperrors "github.com/spec-kit/appointment-service/pkg/util"
)

// ActivityService records an operational audit trail from domain events
// and serves it to administrators. Failures to record are logged, never
// surfaced: the audit trail must not fail the operation it describes.
type ActivityService struct {
	logs   repository.ActivityLogRepository
	logger *zap.Logger
}

// NewActivityService creates the service.
func NewActivityService(logs repository.ActivityLogRepository, logger *zap.Logger) *ActivityService {
	return &ActivityService{logs: logs, logger: logger}
}

// RegisterHandlers subscribes the audit recorder to domain events.
func (s *ActivityService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventAppointmentCreated, s.record)
	dispatcher.Subscribe(events.EventAppointmentUpdated, s.record)
	dispatcher.Subscribe(events.EventAppointmentCancelled, s.record)
	dispatcher.Subscribe(events.EventReminderSent, s.record)
	dispatcher.Subscribe(events.EventUserCreated, s.record)
	dispatcher.Subscribe(events.EventUserUpdated, s.record)
}

// List pages through audit entries, newest first.
func (s *ActivityService) List(ctx context.Context, limit, offset int) ([]domain.ActivityLog, int, error) {
	entries, total, err := s.logs.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return entries, total, nil
}

func (s *ActivityService) record(ctx context.Context, event events.Event) error {
	entry := &domain.ActivityLog{
		UserName:    event.Actor.Name,
		Action:      string(event.Type),
		Description: describe(event),
		IPAddress:   event.Actor.IP,
	}
	if event.Actor.UserID != "" {
		userID := event.Actor.UserID
		entry.UserID = &userID
	}

	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.Error("failed to record activity",
			zap.String("action", entry.Action),
			zap.Error(err))
		return err
	}
	return nil
}

func describe(event events.Event) string {
	if event.AppointmentID > 0 {
		return fmt.Sprintf("%s appointment %d", event.Type, event.AppointmentID)
	}
	return string(event.Type)
}
