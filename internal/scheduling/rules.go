package scheduling

import (
	"time"

	"github.com/spec-kit/appointment-service/internal/domain"
)

// Rule messages are part of the API contract; clients display them verbatim.
const (
	MsgMaxEventsPerDay = "No se pueden crear más de 5 eventos por día."
	MsgMaxDailyHours   = "No se pueden superar las 6 horas de eventos por día."
	MsgOverlap         = "No puede haber superposición horaria con otros eventos."
)

// Rule identifies which constraint rejected a proposal.
type Rule string

const (
	RuleMaxEvents Rule = "MAX_EVENTS_PER_DAY"
	RuleMaxHours  Rule = "MAX_DAILY_HOURS"
	RuleOverlap   Rule = "NO_OVERLAP"
)

// Limits configures the daily quota rules. The zero value is not usable;
// construct via DefaultLimits or from config.
type Limits struct {
	// MaxEventsPerDay caps the number of non-cancelled appointments a user
	// may hold on one calendar date.
	MaxEventsPerDay int
	// MaxDailyHours caps the summed duration, in fractional hours, of a
	// user's non-cancelled appointments on one calendar date. It is also
	// the occupancy denominator used by the dashboard.
	MaxDailyHours float64
	// EnforceOverlap enables the pairwise interval check. It applies to
	// create and update identically.
	EnforceOverlap bool
}

// DefaultLimits returns the quota configuration the service ships with.
func DefaultLimits() Limits {
	return Limits{
		MaxEventsPerDay: 5,
		MaxDailyHours:   6.0,
		EnforceOverlap:  true,
	}
}

// Proposal is the time window of an appointment being created or updated.
// The caller guarantees End > Start; the schema layer rejects anything else
// before the rules run.
type Proposal struct {
	Start time.Time
	End   time.Time
}

// Hours returns the proposal duration in fractional hours.
func (p Proposal) Hours() float64 {
	return p.End.Sub(p.Start).Hours()
}

// Violation describes why a proposal was rejected.
type Violation struct {
	Rule    Rule
	Message string
}

// Validate decides whether a proposed appointment may be committed, given
// the owner's other non-cancelled appointments on the same calendar date.
// For updates the caller excludes the record being edited from existing.
// Rules are evaluated in order and the first failure is returned; a nil
// result means the proposal is admissible. The function is pure: it reads
// nothing beyond its arguments and never persists.
func Validate(limits Limits, proposal Proposal, existing []domain.Appointment) *Violation {
	if len(existing) >= limits.MaxEventsPerDay {
		return &Violation{Rule: RuleMaxEvents, Message: MsgMaxEventsPerDay}
	}

	var booked float64
	for i := range existing {
		booked += existing[i].Hours()
	}
	if booked+proposal.Hours() > limits.MaxDailyHours {
		return &Violation{Rule: RuleMaxHours, Message: MsgMaxDailyHours}
	}

	if limits.EnforceOverlap {
		for i := range existing {
			if overlaps(proposal, existing[i]) {
				return &Violation{Rule: RuleOverlap, Message: MsgOverlap}
			}
		}
	}

	return nil
}

// overlaps checks the half-open intervals [p.Start, p.End) and
// [a.StartTime, a.EndTime). Boundary touching is not an overlap: an
// appointment may start exactly when another ends.
func overlaps(p Proposal, a domain.Appointment) bool {
	return p.Start.Before(a.EndTime) && p.End.After(a.StartTime)
}
