package events

import (
	"time"

	"github.com/spec-kit/appointment-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAppointmentCreated   EventType = "appointment_created"
	EventAppointmentUpdated   EventType = "appointment_updated"
	EventAppointmentCancelled EventType = "appointment_cancelled"
	EventReminderSent         EventType = "reminder_sent"
	EventUserCreated          EventType = "user_created"
	EventUserUpdated          EventType = "user_updated"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Name   string      `json:"name,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
	IP     string      `json:"ip,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID            string      `json:"id"`
	Type          EventType   `json:"type"`
	AppointmentID int64       `json:"appointment_id,omitempty"`
	Actor         Actor       `json:"actor"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload"`
}

// AppointmentCreatedPayload payload.
type AppointmentCreatedPayload struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	OwnerID   string    `json:"owner_id"`
}

// AppointmentUpdatedPayload payload.
type AppointmentUpdatedPayload struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Confirmed bool      `json:"confirmed"`
}

// AppointmentCancelledPayload payload.
type AppointmentCancelledPayload struct {
	Title  string  `json:"title"`
	Reason *string `json:"reason,omitempty"`
}

// ReminderSentPayload payload.
type ReminderSentPayload struct {
	Title     string    `json:"title"`
	OwnerID   string    `json:"owner_id"`
	StartTime time.Time `json:"start_time"`
	SentAt    time.Time `json:"sent_at"`
}

// UserPayload describes account lifecycle events.
type UserPayload struct {
	Email  string            `json:"email"`
	Role   domain.Role       `json:"role"`
	Status domain.UserStatus `json:"status"`
}
