package dto

import (
	"time"

	"github.com/spec-kit/appointment-service/internal/domain"
)

// Wire field names stay camelCase with 0/1 flags: the calendar frontend
// predates this service and its payload shapes are the contract.

// CreateAppointmentRequest payload.
type CreateAppointmentRequest struct {
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	StartTime    time.Time     `json:"startTime"`
	EndTime      time.Time     `json:"endTime"`
	Location     *string       `json:"location"`
	MeetingLink  *string       `json:"meetingLink"`
	IsConfirmed  *domain.YesNo `json:"isConfirmed"`
	SendReminder *domain.YesNo `json:"sendReminder"`
}

// UpdateAppointmentRequest payload. Full replacement semantics, except that
// isCancelled=1 switches the update into a cancellation.
type UpdateAppointmentRequest struct {
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	StartTime          time.Time    `json:"startTime"`
	EndTime            time.Time    `json:"endTime"`
	Location           *string      `json:"location"`
	MeetingLink        *string      `json:"meetingLink"`
	IsConfirmed        domain.YesNo `json:"isConfirmed"`
	IsCancelled        domain.YesNo `json:"isCancelled"`
	CancellationReason *string      `json:"cancellationReason"`
	SendReminder       domain.YesNo `json:"sendReminder"`
}

// CancelAppointmentRequest payload for the delete endpoint.
type CancelAppointmentRequest struct {
	Reason *string `json:"reason"`
}

// MutationResponse reports the outcome of create/update/cancel calls.
type MutationResponse struct {
	ID        int64    `json:"id,omitempty"`
	Succeeded bool     `json:"succeeded"`
	Errors    []string `json:"errors"`
}

// AppointmentResponse is the full appointment view.
type AppointmentResponse struct {
	ID                 int64        `json:"id"`
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	StartTime          time.Time    `json:"startTime"`
	EndTime            time.Time    `json:"endTime"`
	Location           *string      `json:"location"`
	MeetingLink        *string      `json:"meetingLink"`
	UserID             string       `json:"userId"`
	IsConfirmed        domain.YesNo `json:"isConfirmed"`
	IsCancelled        domain.YesNo `json:"isCancelled"`
	CancellationReason *string      `json:"cancellationReason"`
	SendReminder       domain.YesNo `json:"sendReminder"`
	ReminderSentAt     *time.Time   `json:"reminderSentAt"`
	CreatedAt          time.Time    `json:"created"`
	UpdatedAt          time.Time    `json:"lastModified"`
}

// AppointmentListResponse is the paged listing envelope.
type AppointmentListResponse struct {
	Items      []AppointmentResponse `json:"items"`
	TotalCount int                   `json:"totalCount"`
}

// NewAppointmentResponse maps the domain entity to the wire view.
func NewAppointmentResponse(a *domain.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:                 a.ID,
		Title:              a.Title,
		Description:        a.Description,
		StartTime:          a.StartTime,
		EndTime:            a.EndTime,
		Location:           a.Location,
		MeetingLink:        a.MeetingLink,
		UserID:             a.UserID,
		IsConfirmed:        a.IsConfirmed,
		IsCancelled:        a.IsCancelled,
		CancellationReason: a.CancellationReason,
		SendReminder:       a.SendReminder,
		ReminderSentAt:     a.ReminderSentAt,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// NewAppointmentListResponse maps a page of entities.
func NewAppointmentListResponse(items []domain.Appointment, totalCount int) AppointmentListResponse {
	responses := make([]AppointmentResponse, 0, len(items))
	for i := range items {
		responses = append(responses, NewAppointmentResponse(&items[i]))
	}
	return AppointmentListResponse{Items: responses, TotalCount: totalCount}
}
