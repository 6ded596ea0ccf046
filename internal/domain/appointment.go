package domain

import "time"

// YesNo is a two-valued flag serialized as 0/1 for compatibility with
// existing clients of the calendar API.
type YesNo int

const (
	No  YesNo = 0
	Yes YesNo = 1
)

// Bool converts the flag for in-process checks.
func (v YesNo) Bool() bool {
	return v == Yes
}

// YesNoFromBool maps a boolean to the wire flag.
func YesNoFromBool(b bool) YesNo {
	if b {
		return Yes
	}
	return No
}

// Appointment is the aggregate for calendar events. An appointment is owned
// by exactly one user and is never physically deleted; cancellation flips
// IsCancelled and removes the record from quota and overlap calculations.
type Appointment struct {
	ID                 int64
	Title              string
	Description        string
	StartTime          time.Time
	EndTime            time.Time
	Location           *string
	MeetingLink        *string
	UserID             string
	IsConfirmed        YesNo
	IsCancelled        YesNo
	CancellationReason *string
	SendReminder       YesNo
	ReminderSentAt     *time.Time
	CreatedAt          time.Time
	CreatedBy          string
	UpdatedAt          time.Time
	UpdatedBy          string
}

// Duration returns the scheduled length of the appointment.
func (a *Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

// Hours returns the scheduled length in fractional hours.
func (a *Appointment) Hours() float64 {
	return a.Duration().Hours()
}

// Day returns the calendar date of StartTime, truncated to midnight in the
// start time's location. Quota and overlap rules group by this value.
func (a *Appointment) Day() time.Time {
	return DateOnly(a.StartTime)
}

// DateOnly truncates a timestamp to midnight, preserving the location.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
