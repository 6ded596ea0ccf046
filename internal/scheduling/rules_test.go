package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/appointment-service/internal/domain"
)

func appt(start, end time.Time) domain.Appointment {
	return domain.Appointment{
		UserID:      "user-1",
		StartTime:   start,
		EndTime:     end,
		IsCancelled: domain.No,
	}
}

func at(day time.Time, hour, min int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, time.UTC)
}

var day = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

func TestValidate_Accepts_WhenDayIsFree(t *testing.T) {
	v := Validate(DefaultLimits(), Proposal{Start: at(day, 9, 0), End: at(day, 10, 0)}, nil)
	assert.Nil(t, v)
}

func TestValidate_RejectsSixthEvent_RegardlessOfDuration(t *testing.T) {
	existing := make([]domain.Appointment, 0, 5)
	for i := 0; i < 5; i++ {
		existing = append(existing, appt(at(day, 9+i, 0), at(day, 9+i, 30)))
	}

	v := Validate(DefaultLimits(), Proposal{Start: at(day, 20, 0), End: at(day, 20, 1)}, existing)
	require.NotNil(t, v)
	assert.Equal(t, RuleMaxEvents, v.Rule)
	assert.Equal(t, "No se pueden crear más de 5 eventos por día.", v.Message)
}

func TestValidate_RejectsWhenDailyHoursExceeded(t *testing.T) {
	// 5 hours booked; a 2-hour proposal totals 7 > 6.
	existing := []domain.Appointment{appt(at(day, 8, 0), at(day, 13, 0))}

	v := Validate(DefaultLimits(), Proposal{Start: at(day, 14, 0), End: at(day, 16, 0)}, existing)
	require.NotNil(t, v)
	assert.Equal(t, RuleMaxHours, v.Rule)
	assert.Equal(t, "No se pueden superar las 6 horas de eventos por día.", v.Message)
}

func TestValidate_AcceptsExactlySixHours(t *testing.T) {
	existing := []domain.Appointment{appt(at(day, 8, 0), at(day, 12, 0))}

	// 4 + 2 = 6.0, not strictly greater than the cap.
	v := Validate(DefaultLimits(), Proposal{Start: at(day, 13, 0), End: at(day, 15, 0)}, existing)
	assert.Nil(t, v)
}

func TestValidate_FractionalHoursAreNotRounded(t *testing.T) {
	existing := []domain.Appointment{appt(at(day, 8, 0), at(day, 13, 30))} // 5.5h

	v := Validate(DefaultLimits(), Proposal{Start: at(day, 14, 0), End: at(day, 14, 45)}, existing)
	require.NotNil(t, v)
	assert.Equal(t, RuleMaxHours, v.Rule)
}

func TestValidate_RejectsOverlap(t *testing.T) {
	existing := []domain.Appointment{appt(at(day, 9, 0), at(day, 10, 0))}

	v := Validate(DefaultLimits(), Proposal{Start: at(day, 9, 30), End: at(day, 10, 30)}, existing)
	require.NotNil(t, v)
	assert.Equal(t, RuleOverlap, v.Rule)
	assert.Equal(t, "No puede haber superposición horaria con otros eventos.", v.Message)
}

func TestValidate_BoundaryTouchIsNotOverlap(t *testing.T) {
	existing := []domain.Appointment{appt(at(day, 9, 0), at(day, 10, 0))}

	// Starts exactly when the existing one ends.
	v := Validate(DefaultLimits(), Proposal{Start: at(day, 10, 0), End: at(day, 11, 0)}, existing)
	assert.Nil(t, v)

	// Ends exactly when the existing one starts.
	v = Validate(DefaultLimits(), Proposal{Start: at(day, 8, 0), End: at(day, 9, 0)}, existing)
	assert.Nil(t, v)
}

func TestValidate_ContainedIntervalIsOverlap(t *testing.T) {
	existing := []domain.Appointment{appt(at(day, 9, 0), at(day, 12, 0))}

	v := Validate(DefaultLimits(), Proposal{Start: at(day, 10, 0), End: at(day, 11, 0)}, existing)
	require.NotNil(t, v)
	assert.Equal(t, RuleOverlap, v.Rule)
}

func TestValidate_EncompassingIntervalIsOverlap(t *testing.T) {
	existing := []domain.Appointment{appt(at(day, 10, 0), at(day, 11, 0))}

	v := Validate(DefaultLimits(), Proposal{Start: at(day, 9, 0), End: at(day, 12, 0)}, existing)
	require.NotNil(t, v)
	assert.Equal(t, RuleOverlap, v.Rule)
}

func TestValidate_OverlapCheckCanBeDisabled(t *testing.T) {
	limits := DefaultLimits()
	limits.EnforceOverlap = false
	existing := []domain.Appointment{appt(at(day, 9, 0), at(day, 10, 0))}

	v := Validate(limits, Proposal{Start: at(day, 9, 30), End: at(day, 10, 30)}, existing)
	assert.Nil(t, v)
}

func TestValidate_RulesEvaluateInOrder(t *testing.T) {
	// A full day that also exceeds hours and overlaps: rule 1 must win.
	existing := make([]domain.Appointment, 0, 5)
	for i := 0; i < 5; i++ {
		existing = append(existing, appt(at(day, 8+i, 0), at(day, 9+i, 0)))
	}

	v := Validate(DefaultLimits(), Proposal{Start: at(day, 8, 30), End: at(day, 12, 30)}, existing)
	require.NotNil(t, v)
	assert.Equal(t, RuleMaxEvents, v.Rule)
}
